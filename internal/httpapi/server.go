// Package httpapi serves recommendations over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cognicore/medrec/pkg/medrec"
	"github.com/cognicore/medrec/pkg/medrec/metrics"
	"github.com/cognicore/medrec/pkg/medrec/store"
)

const maxBodyBytes = 1 << 16

// Options configures the HTTP front end.
type Options struct {
	Medrec *medrec.Medrec
	// Store records served recommendations when set.
	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Text string `json:"text" binding:"required"`
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{med: opts.Medrec, store: opts.Store, logger: logger}

	router := gin.New()
	router.Use(
		requestLogger(logger),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
	)

	router.GET("/healthz", h.health)
	router.GET("/predict", h.predictQuery)
	router.POST("/predict", h.predictJSON)
	router.GET("/symptoms", h.symptoms)
	router.GET("/symptoms/:symptom/diseases", h.diseasesFor)
	router.GET("/diseases/:disease/symptoms", h.symptomsFor)
	router.GET("/history", h.history)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	return router
}

type handler struct {
	med    *medrec.Medrec
	store  store.Store
	logger *zap.Logger
}

func (h *handler) health(c *gin.Context) {
	idx := h.med.Index()
	status := http.StatusOK
	state := "ok"
	if idx.Len() == 0 {
		status = http.StatusServiceUnavailable
		state = "empty"
	}
	c.JSON(status, gin.H{
		"status":   state,
		"symptoms": idx.Len(),
		"diseases": idx.DiseaseCount(),
		"dataset":  fmt.Sprintf("%016x", idx.Fingerprint()),
	})
}

func (h *handler) predictQuery(c *gin.Context) {
	text := strings.TrimSpace(c.Query("q"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	h.respond(c, text)
}

func (h *handler) predictJSON(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.respond(c, req.Text)
}

func (h *handler) respond(c *gin.Context, text string) {
	rec := h.med.Recommend(text)
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.AppendHistory(ctx, rec.History()); err != nil {
			h.logger.Warn("record history", zap.String("id", rec.ID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handler) symptoms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symptoms": h.med.Index().Symptoms()})
}

func (h *handler) diseasesFor(c *gin.Context) {
	symptom := c.Param("symptom")
	diseases := h.med.Index().DiseasesFor(symptom)
	if len(diseases) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symptom", "symptom": symptom})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symptom": symptom, "diseases": diseases})
}

func (h *handler) symptomsFor(c *gin.Context) {
	disease := c.Param("disease")
	symptoms := h.med.Index().SymptomsFor(disease)
	if len(symptoms) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown disease", "disease": disease})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disease": disease, "symptoms": symptoms})
}

func (h *handler) history(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history disabled"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.store.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// Serve runs the router on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
