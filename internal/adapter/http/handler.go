package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/app/result"
	"mevsbrain/internal/app/session"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const sessionIDHeader = "X-Session-ID"

type Handler struct {
	Sessions *session.Manager
	ResultUC result.UseCase
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	api := s.Group("/api")
	api.POST("/session", h.createSession)
	api.GET("/session/state", h.state)
	api.POST("/session/restart", h.restart)
	api.POST("/session/pause", h.pause)
	api.POST("/session/resume", h.resume)
	api.POST("/session/work", h.work)
	api.POST("/session/choice", h.choice)
	api.POST("/session/key", h.key)
	api.POST("/session/text", h.text)
	api.POST("/session/media-ended", h.mediaEnded)
	api.POST("/session/powerup", h.powerup)
	api.POST("/session/event", h.forceEvent)
	api.GET("/session/log", h.sessionLog)
	api.GET("/results", h.results)

	s.GET("/ops/kpi", h.kpi)
}

type createSessionRequest struct {
	SeedStoryID string `json:"seed_story_id,omitempty"`
}

type choiceRequest struct {
	Index int `json:"index"`
}

type keyRequest struct {
	Code string `json:"code"`
}

type textRequest struct {
	Value string `json:"value"`
}

type forceEventRequest struct {
	EventID string `json:"event_id"`
}

type powerupRequest struct {
	Kind string `json:"kind"`
}

func (h Handler) createSession(c context.Context, ctx *app.RequestContext) {
	var body createSessionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	s := h.Sessions.Create(body.SeedStoryID)
	ctx.JSON(consts.StatusCreated, s.Snapshot())
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) restart(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	s.Restart()
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) pause(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := s.Pause(); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) resume(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := s.Resume(); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) work(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := s.WorkClick(); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) choice(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body choiceRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := s.Choice(body.Index); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) key(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body keyRequest
	if err := decodeJSON(ctx, &body); err != nil || body.Code == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	s.HandleKey(body.Code)
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) text(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body textRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	s.HandleText(body.Value)
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) mediaEnded(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	s.MediaEnded()
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) powerup(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body powerupRequest
	if err := decodeJSON(ctx, &body); err != nil || body.Kind == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := s.UsePowerup(body.Kind); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) forceEvent(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body forceEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(body.EventID) == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "event_id is required")
		return
	}
	if err := s.ForceEvent(body.EventID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, s.Snapshot())
}

func (h Handler) sessionLog(c context.Context, ctx *app.RequestContext) {
	s, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	// The in-memory journal covers the current run; the repository only has
	// entries once a run has finished and persisted.
	if events := s.Journal(limit); len(events) > 0 {
		ctx.JSON(consts.StatusOK, result.LogResponse{Events: events})
		return
	}
	resp, err := h.ResultUC.SessionLog(c, result.LogRequest{SessionID: s.ID, Limit: limit})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) results(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ResultUC.ListRecent(c, result.ListRequest{Limit: limit})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

var ErrMissingSessionHeader = errors.New("missing x-session-id header")

func (h Handler) requireSession(ctx *app.RequestContext) (*session.Session, error) {
	id := strings.TrimSpace(string(ctx.GetHeader(sessionIDHeader)))
	if id == "" {
		return nil, ErrMissingSessionHeader
	}
	return h.Sessions.Get(id)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingSessionHeader):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_session_id", err.Error())
	case errors.Is(err, result.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
