package app

import (
	"time"

	"github.com/ghuser/shoplist/pkg/cache"
	"github.com/ghuser/shoplist/pkg/database"
	"github.com/ghuser/shoplist/pkg/events"
	"github.com/ghuser/shoplist/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service Routes calls during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler — use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "item created", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient // nil when REDIS_URL is unset; caching is then disabled

	ListCacheTTL time.Duration
}
