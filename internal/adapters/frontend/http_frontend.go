package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"go.uber.org/zap"
)

const maxRecentLimit = 50

// HTTPFrontend serves the draft API over HTTP
type HTTPFrontend struct {
	service      *core.DraftService
	logger       *zap.Logger
	cfg          config.ServerConfig
	historyLimit int
	router       chi.Router
	server       *http.Server
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Subject string `json:"subject,omitempty"`
}

type sendResponse struct {
	To   string `json:"to"`
	Body string `json:"body"`
	Sent bool   `json:"sent"`
}

type recentDraft struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type recentResponse struct {
	Recipients []string      `json:"recipients"`
	Drafts     []recentDraft `json:"drafts"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// NewHTTPFrontend creates a new HTTP frontend
func NewHTTPFrontend(service *core.DraftService, logger *zap.Logger, cfg config.ServerConfig, historyLimit int) *HTTPFrontend {
	f := &HTTPFrontend{
		service:      service,
		logger:       logger,
		cfg:          cfg,
		historyLimit: historyLimit,
	}
	f.router = f.routes()
	return f
}

func (f *HTTPFrontend) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(f.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: f.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", f.handleHealth)

	r.Route("/email", func(r chi.Router) {
		r.Use(rateLimit(f.cfg.RateLimitRPS, f.cfg.RateLimitBurst))
		r.Post("/generate", f.handleGenerate)
		r.Post("/send", f.handleSend)
		r.Get("/recent", f.handleRecent)
	})

	return r
}

// Handler returns the HTTP handler
func (f *HTTPFrontend) Handler() http.Handler {
	return f.router
}

// Start binds the listen address and serves in the background
func (f *HTTPFrontend) Start() error {
	l, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}

	f.server = f.newServer()

	f.logger.Info("HTTP frontend starting",
		zap.String("address", l.Addr().String()),
		zap.String("provider", f.service.ProviderName()))

	go func() {
		if err := f.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

func (f *HTTPFrontend) newServer() *http.Server {
	return &http.Server{
		Handler:           f.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       durationOr(f.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      durationOr(f.cfg.WriteTimeout, 60*time.Second),
		IdleTimeout:       durationOr(f.cfg.IdleTimeout, 60*time.Second),
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// Stop gracefully shuts the server down
func (f *HTTPFrontend) Stop() error {
	if f.server == nil {
		return nil
	}

	timeout := f.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := f.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// ProcessPrompt generates a draft for prompt
func (f *HTTPFrontend) ProcessPrompt(ctx context.Context, prompt string) (core.EmailDraft, error) {
	return f.service.Generate(ctx, prompt)
}

func (f *HTTPFrontend) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": f.service.ProviderName(),
	})
}

func (f *HTTPFrontend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePrompt(w, r)
	if !ok {
		return
	}

	draft, err := f.ProcessPrompt(r.Context(), req.Prompt)
	if err != nil {
		f.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, draft)
}

func (f *HTTPFrontend) handleSend(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePrompt(w, r)
	if !ok {
		return
	}

	draft, err := f.service.Send(r.Context(), req.Prompt, req.Subject)
	if err != nil {
		f.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, sendResponse{To: draft.To, Body: draft.Body, Sent: true})
}

func (f *HTTPFrontend) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := f.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Limit must be a positive integer", "BadRequest")
			return
		}
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	records, err := f.service.Recent(r.Context(), limit)
	if err != nil {
		f.respondServiceError(w, r, err)
		return
	}

	resp := recentResponse{
		Recipients: core.RecentRecipients(records),
		Drafts:     make([]recentDraft, 0, len(records)),
	}
	for _, rec := range records {
		resp.Drafts = append(resp.Drafts, recentDraft{
			ID:        rec.ID,
			To:        rec.To,
			Body:      rec.Body,
			CreatedAt: rec.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// decodePrompt reads the request body, answering 400 when no usable prompt is present
func decodePrompt(w http.ResponseWriter, r *http.Request) (generateRequest, bool) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		respondError(w, http.StatusBadRequest, "Prompt is required", "BadRequest")
		return req, false
	}
	return req, true
}

func (f *HTTPFrontend) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	kind := core.Kind(err)

	fields := []zap.Field{
		zap.String("kind", kind),
		zap.Int("status", status),
		zap.Error(err),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		f.logger.Error("Request failed", fields...)
	} else {
		f.logger.Warn("Request rejected", fields...)
	}

	respondError(w, status, message, kind)
}

// statusFor maps an error kind to its HTTP status and public message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrAddressNotFound):
		return http.StatusUnprocessableEntity, "No email address found in the prompt"
	case errors.Is(err, core.ErrGenerationFailed):
		return http.StatusInternalServerError, "Failed to generate email"
	case errors.Is(err, core.ErrDeliveryDisabled):
		return http.StatusServiceUnavailable, "Email delivery is not configured"
	case errors.Is(err, core.ErrRecipientNotAllowed):
		return http.StatusForbidden, "Recipient domain is not allowed"
	case errors.Is(err, core.ErrDeliveryFailed):
		return http.StatusBadGateway, "Failed to deliver email"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message, kind string) {
	respondJSON(w, status, errorResponse{StatusCode: status, Message: message, Error: kind})
}
