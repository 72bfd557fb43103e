package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"go.uber.org/zap"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

type SearchCounter interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type OpenAIPinger interface {
	Ping(ctx context.Context) (int, error)
	Model() string
}

// DiagnosticsEnv describes which optional backends the server was started with
type DiagnosticsEnv struct {
	DatabaseConfigured bool   `json:"databaseConfigured"`
	OpenAIConfigured   bool   `json:"openAIConfigured"`
	RedisConfigured    bool   `json:"redisConfigured"`
	S3Configured       bool   `json:"s3Configured"`
	SentryConfigured   bool   `json:"sentryConfigured"`
	Environment        string `json:"environment"`
}

type DiagnosticsHandler struct {
	env      DiagnosticsEnv
	db       DBPinger
	products ProductCounter
	searches SearchCounter
	openai   OpenAIPinger
	logger   *zap.Logger
	now      func() time.Time
}

func NewDiagnosticsHandler(
	env DiagnosticsEnv,
	db DBPinger,
	products ProductCounter,
	searches SearchCounter,
	openai OpenAIPinger,
	logger *zap.Logger,
) *DiagnosticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticsHandler{
		env:      env,
		db:       db,
		products: products,
		searches: searches,
		openai:   openai,
		logger:   logger.Named("diagnostics"),
		now:      time.Now,
	}
}

type statusFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *DiagnosticsHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DiagnosticsHandler) Test(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "API is working correctly",
		"env":       h.env,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

type DBStats struct {
	Products         int64 `json:"products"`
	SearchesLast24h  int64 `json:"searchesLast24h"`
	PingMilliseconds int64 `json:"pingMs"`
}

func (h *DiagnosticsHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := h.now()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("database ping failed", zap.Error(err))
		api.JSON(w, http.StatusInternalServerError, statusFailure{Error: "Database connection failed"})
		return
	}
	stats := DBStats{PingMilliseconds: h.now().Sub(start).Milliseconds()}

	var err error
	if stats.Products, err = h.products.Count(ctx); err != nil {
		h.logger.Error("count products failed", zap.Error(err))
		api.JSON(w, http.StatusInternalServerError, statusFailure{Error: "Database query failed"})
		return
	}
	if stats.SearchesLast24h, err = h.searches.CountSince(ctx, h.now().Add(-24*time.Hour)); err != nil {
		h.logger.Error("count searches failed", zap.Error(err))
		api.JSON(w, http.StatusInternalServerError, statusFailure{Error: "Database query failed"})
		return
	}

	api.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Database connection successful",
		"stats":   stats,
	})
}

func (h *DiagnosticsHandler) TestOpenAI(w http.ResponseWriter, r *http.Request) {
	if h.openai == nil {
		api.JSON(w, http.StatusInternalServerError, statusFailure{Error: "OpenAI API key is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	models, err := h.openai.Ping(ctx)
	if err != nil {
		h.logger.Error("openai ping failed", zap.Error(err))
		api.JSON(w, http.StatusInternalServerError, statusFailure{Error: "OpenAI API request failed"})
		return
	}

	api.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "OpenAI API is working!",
		"model":   h.openai.Model(),
		"models":  models,
	})
}
