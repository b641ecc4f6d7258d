package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/analysis"
	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/profiles"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
	"github.com/jonathan/resume-screener/internal/types"
)

// ProfileService merges analyses into skill profiles and searches them.
type ProfileService interface {
	Merge(ctx context.Context, userID uuid.UUID, userEmail string, skills []string, score float64) (*profiles.SkillProfile, error)
	Search(ctx context.Context, querySkills []string) ([]profiles.CandidateMatch, error)
}

// ResumeAnalyzer scores a resume against a job.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (*analysis.Result, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	MaxUploadBytes int64
	SecureCookies  bool
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Users       UserStore
	Profiles    ProfileService
	Analyzer    ResumeAnalyzer
	JWT         *config.JWTConfig
	Password    *config.PasswordConfig
	RateLimiter *ratelimit.Limiter // optional
	Metrics     *metrics.Manager   // optional
	Logger      *zap.Logger        // optional
	Ping        func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	logger         *zap.Logger
	metrics        *metrics.Manager
	rateLimiter    *ratelimit.Limiter
	userService    *UserService
	authHandler    *AuthHandler
	profiles       ProfileService
	analyzer       ResumeAnalyzer
	ping           func(ctx context.Context) error
	allowedOrigins []string
	maxUploadBytes int64
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Users == nil || deps.Profiles == nil || deps.Analyzer == nil {
		return nil, fmt.Errorf("server requires users, profiles and analyzer")
	}
	if deps.JWT == nil || deps.Password == nil {
		return nil, fmt.Errorf("server requires JWT and password configuration")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	s := &Server{
		logger:         logger,
		metrics:        deps.Metrics,
		rateLimiter:    deps.RateLimiter,
		userService:    NewUserService(deps.Users, deps.Password),
		profiles:       deps.Profiles,
		analyzer:       deps.Analyzer,
		ping:           deps.Ping,
		allowedOrigins: cfg.AllowedOrigins,
		maxUploadBytes: maxUpload,
	}

	jwtService := NewJWTService(deps.JWT)
	s.authHandler = NewAuthHandler(s.userService, jwtService, logger)
	s.authHandler.secureCookie = cfg.SecureCookies

	authenticated := middleware.AuthMiddleware(jwtService.AsTokenValidator())
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(types.RoleAdmin)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("POST /api/v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", s.authHandler.Logout)
	mux.Handle("GET /api/v1/auth/current-user", authenticated(http.HandlerFunc(s.authHandler.CurrentUser)))
	mux.Handle("PUT /api/v1/auth/password", authenticated(http.HandlerFunc(s.authHandler.UpdatePassword)))

	mux.Handle("POST /api/v1/resume/analyze", authenticated(http.HandlerFunc(s.handleAnalyzeResume)))

	mux.Handle("GET /api/v1/admin/candidates", adminOnly(s.handleSearchCandidates))

	s.handler = s.withRecovery(s.withLogging(s.withCORS(s.withRateLimit(mux))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM analysis can be slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS allows credentialed requests from the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(s.allowedOrigins, origin) || slices.Contains(s.allowedOrigins, "*")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request and records HTTP metrics.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		// r.Pattern is set by the mux on the shared request
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, rec.status, elapsed)
		}
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr))
	})
}

// withRecovery turns handler panics into 500 responses.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				s.errorResponse(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.logger, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(w, s.logger, status, message)
}

// failure maps err to a status, logs server-side failures and writes the body.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.errorResponse(w, status, publicMessage(status, err))
}

// extractClientID uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"success":   false,
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
