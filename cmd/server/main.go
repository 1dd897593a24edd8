package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mevsbrain/internal/adapter/config"
	staticcontent "mevsbrain/internal/adapter/content/static"
	httpadapter "mevsbrain/internal/adapter/http"
	"mevsbrain/internal/adapter/media"
	metricsinmem "mevsbrain/internal/adapter/metrics/inmemory"
	gormrepo "mevsbrain/internal/adapter/repo/gorm"
	"mevsbrain/internal/adapter/repo/memory"
	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/app/result"
	"mevsbrain/internal/app/session"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	logger := log.Default()
	tx, resultRepo, analyticsRepo := mustBuildRepos(logger)

	tuning, err := config.LoadTuning(stringEnv("MEVSBRAIN_TUNING_PATH", "./configs/tuning.yaml"))
	if err != nil {
		log.Fatalf("load tuning: %v", err)
	}

	loader := staticcontent.NewLoader(
		stringEnv("MEVSBRAIN_EVENTS_PATH", "./assets/events.json"),
		stringEnv("MEVSBRAIN_VIDEO_ROOT", ""),
		logger,
	)
	kpiRecorder := metricsinmem.NewRecorder()

	manager := session.NewManager(context.Background(), session.Config{
		Tuning:                   tuning,
		TickInterval:             time.Second,
		RealSecondsPerGameMinute: floatEnv("MEVSBRAIN_REAL_SECONDS_PER_GAME_MINUTE", 60),
	}, session.ManagerDeps{
		Content:      loader,
		Tx:           tx,
		Results:      resultRepo,
		Analytics:    analyticsRepo,
		Metrics:      kpiRecorder,
		MediaFactory: buildMediaFactory(),
		Logger:       logger,
	})
	defer manager.CloseAll()

	h := httpadapter.Handler{
		Sessions: manager,
		ResultUC: result.UseCase{Results: resultRepo, Analytics: analyticsRepo},
		KPI:      kpiRecorder,
	}

	addr := stringEnv("MEVSBRAIN_ADDR", ":8080")
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Printf("mevsbrain server listening on %s", addr)
	s.Spin()
}

// mustBuildRepos opens Postgres when a DSN is configured and falls back to
// the in-memory store otherwise, so the game runs without infrastructure.
func mustBuildRepos(logger *log.Logger) (ports.TxManager, ports.ResultRepository, ports.AnalyticsRepository) {
	dsn := strings.TrimSpace(os.Getenv("MEVSBRAIN_DB_DSN"))
	if dsn == "" {
		logger.Println("MEVSBRAIN_DB_DSN not set, results are kept in memory")
		store := memory.NewStore()
		return memory.NewTxManager(store), memory.NewResultRepo(store), memory.NewAnalyticsRepo(store)
	}

	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	migrations := stringEnv("MEVSBRAIN_MIGRATIONS_DIR", "./migrations")
	if err := gormrepo.ApplyMigrations(context.Background(), db, migrations); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	return gormrepo.NewTxManager(db), gormrepo.NewResultRepo(db), gormrepo.NewAnalyticsRepo(db)
}

// buildMediaFactory picks the playback adapter. The manual player waits for
// the client's media-ended callback; the instant player is for headless use.
func buildMediaFactory() func() ports.MediaPlayer {
	if boolEnv("MEVSBRAIN_HEADLESS_MEDIA", false) {
		return func() ports.MediaPlayer { return media.NewInstantPlayer() }
	}
	return func() ports.MediaPlayer { return media.NewManualPlayer() }
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
