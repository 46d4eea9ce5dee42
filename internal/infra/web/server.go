package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-course-bot/internal/config"
	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/infra/logging"
	"telegram-course-bot/internal/infra/worker"
	"telegram-course-bot/internal/usecase"
)

// UpdateSink receives Telegram updates delivered over the webhook route.
type UpdateSink interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
	Token() string
}

// Server exposes the public health endpoints, the bot webhook, Prometheus
// metrics, and a small JWT-guarded admin API.
type Server struct {
	cfg     *config.Config
	sink    UpdateSink
	pool    *worker.Pool
	userUC  usecase.UserUseCase
	statsUC usecase.StatsUseCase
	auth    *AuthManager
	log     *zerolog.Logger
	started time.Time

	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	sink UpdateSink,
	pool *worker.Pool,
	userUC usecase.UserUseCase,
	statsUC usecase.StatsUseCase,
	log *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:     cfg,
		sink:    sink,
		pool:    pool,
		userUC:  userUC,
		statsUC: statsUC,
		auth:    NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL),
		log:     log,
		started: time.Now(),
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/webhook/{token}", s.handleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Require)
			r.Post("/logout", s.handleLogout)
			r.Get("/stats", s.handleStats)
			r.Post("/users/{tgID}/paid", s.handleSetPaid)
		})
	})
	return r
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "7-Day Money Flow Reset bot",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"uptime_s":  int64(time.Since(s.started).Seconds()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleWebhook accepts Telegram's POSTed update. The secret path segment
// must match the bot token. Processing happens on the worker pool so the
// response to Telegram is immediate.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.sink.Token())) != 1 {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log := logging.With(r.Context(), s.log)
		log.Warn().Err(err).Msg("undecodable webhook payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	u := update
	if err := s.pool.Submit(func(ctx context.Context) error {
		return s.sink.HandleUpdate(ctx, u)
	}); err != nil {
		s.log.Warn().Err(err).Int("update_id", u.UpdateID).Msg("webhook update dropped")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Admin.Password == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.Admin.Password)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Summary(r.Context())
	if err != nil {
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Msg("stats summary failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type setPaidRequest struct {
	Paid bool `json:"paid"`
}

func (s *Server) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	tgID, err := strconv.ParseInt(chi.URLParam(r, "tgID"), 10, 64)
	if err != nil || tgID == 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	var req setPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := s.userUC.SetPaid(r.Context(), tgID, req.Paid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Int64("tg_id", tgID).Msg("set paid failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tg_id": tgID, "paid": req.Paid})
}
