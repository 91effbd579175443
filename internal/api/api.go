package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"candleChart/internal/app"
	"candleChart/internal/ports"
)

const (
	DefaultTimeframe    = "1m"
	DefaultTimeout      = 60 * time.Second
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// ChartGenerator renders a chart for stored candles and trades.
type ChartGenerator interface {
	GenerateFromSymbol(ctx context.Context, symbol, timeframe string, limit int) (*app.ChartResult, error)
}

// Handler serves generated charts over HTTP.
type Handler struct {
	charts  ChartGenerator
	logger  ports.Logger
	timeout time.Duration

	// Held from render until the image is read back, so concurrent
	// requests never see each other's output.
	mu sync.Mutex
}

// NewHandler creates a new API handler.
func NewHandler(charts ChartGenerator, logger ports.Logger) *Handler {
	return &Handler{charts: charts, logger: logger, timeout: DefaultTimeout}
}

// SetupRoutes configures all API routes.
func (h *Handler) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())

	router.GET("/chart", h.GetChart)
	router.GET("/health", h.HealthCheck)
	return router
}

// Serve runs the HTTP server until ctx is canceled.
func (h *Handler) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.SetupRoutes(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.logger.Info(context.Background(), "Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// GetChart handles GET /chart?symbol=ETHUSDT&timeframe=1h[&limit=500].
func (h *Handler) GetChart(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		h.respondError(c, http.StatusBadRequest, "symbol query parameter is required")
		return
	}
	timeframe := c.DefaultQuery("timeframe", DefaultTimeframe)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.respondError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.charts.GenerateFromSymbol(ctx, symbol, timeframe, limit)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrInvalidRequest):
			h.respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ports.ErrNotFound):
			h.respondError(c, http.StatusNotFound, err.Error())
		default:
			h.logger.Error(ctx, err, "Chart generation failed", map[string]interface{}{"symbol": symbol, "timeframe": timeframe})
			h.respondError(c, http.StatusInternalServerError, "chart generation failed")
		}
		return
	}

	img, err := os.ReadFile(res.Path)
	if err != nil {
		h.logger.Error(ctx, err, "Reading rendered chart failed", map[string]interface{}{"path": res.Path})
		h.respondError(c, http.StatusInternalServerError, "chart generation failed")
		return
	}

	c.Header("X-Chart-Candles", strconv.Itoa(res.Candles))
	c.Header("X-Chart-Markers", strconv.Itoa(res.Buys+res.Sells))
	c.Data(http.StatusOK, "image/png", img)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func (h *Handler) respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg, "request_id": c.GetString(RequestIDContextKey)})
}
