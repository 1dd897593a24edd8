package ports

import (
	"context"

	"mevsbrain/internal/domain/game"
)

// ContentProvider feeds story events into the engine. Implementations
// validate events (including asset existence) and drop broken ones at load
// time; a failed load yields zero events, never a crash.
type ContentProvider interface {
	LoadEvents(ctx context.Context) ([]game.StoryEvent, error)
}
