// Package sandbox is an offline stand-in for the flight vendor's self-service
// API. It speaks the same wire format as the real test environment so the
// client and the booking loop can run without credentials.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/internal/metrics"
	"github.com/FeelPulse/flightpulse/internal/ratelimit"
)

var log = logger.Component("sandbox")

const tokenTTL = 30 * time.Minute

// Config configures the sandbox
type Config struct {
	// ClientID and ClientSecret, when set, must match the token request
	ClientID     string
	ClientSecret string
	// RateLimit is requests per minute per client address (0 = unlimited)
	RateLimit int
	// FailBookings rejects that many initial bookings with a segment sell failure
	FailBookings int
}

// Server serves the vendor routes
type Server struct {
	cfg     Config
	router  *mux.Router
	orders  *orderStore
	limiter *ratelimit.Limiter
	metrics *metrics.Collector
	now     func() time.Time

	mu       sync.Mutex
	tokens   map[string]time.Time // access token -> expiry
	failLeft int
}

// New creates a sandbox. m may be nil.
func New(cfg Config, m *metrics.Collector) *Server {
	s := &Server{
		cfg:      cfg,
		orders:   newOrderStore(),
		limiter:  ratelimit.New(cfg.RateLimit),
		metrics:  m,
		now:      time.Now,
		tokens:   make(map[string]time.Time),
		failLeft: cfg.FailBookings,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// order ids arrive percent-encoded and must reach the handler unchanged
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.observe)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	vendor := r.NewRoute().Subrouter()
	vendor.Use(s.limiter.Middleware(s.rejectRateLimited))
	vendor.HandleFunc("/v1/security/oauth2/token", s.handleToken).Methods(http.MethodPost)

	api := vendor.NewRoute().Subrouter()
	api.Use(s.authorize)
	api.HandleFunc("/v2/shopping/flight-offers", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/v1/shopping/flight-offers/pricing", s.handlePricing).Methods(http.MethodPost)
	api.HandleFunc("/v1/booking/flight-orders", s.handleCreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/v1/booking/flight-orders/{id}", s.handleGetOrder).Methods(http.MethodGet)

	s.router = r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// FailNextBookings makes the next n bookings fail with a segment sell failure
func (s *Server) FailNextBookings(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLeft = n
}

// takeFailure reports whether this booking should be rejected
func (s *Server) takeFailure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLeft <= 0 {
		return false
	}
	s.failLeft--
	return true
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("sandbox listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("sandbox vendor listening on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down sandbox vendor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"orders": s.orders.Len(),
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, "invalid_request", "malformed form body")
		return
	}
	if r.PostFormValue("grant_type") != "client_credentials" {
		writeOAuthError(w, "unsupported_grant_type", "only client_credentials is supported")
		return
	}
	id, secret := r.PostFormValue("client_id"), r.PostFormValue("client_secret")
	if id == "" {
		id, secret, _ = r.BasicAuth()
	}
	if s.cfg.ClientID != "" && (id != s.cfg.ClientID || secret != s.cfg.ClientSecret) {
		writeOAuthError(w, "invalid_client", "Client credentials are invalid")
		return
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.mu.Lock()
	s.tokens[token] = s.now().Add(tokenTTL)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"type":         "amadeusOAuth2Token",
		"username":     "sandbox@flightpulse",
		"client_id":    id,
		"token_type":   "Bearer",
		"access_token": token,
		"expires_in":   int(tokenTTL / time.Second),
		"state":        "approved",
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !s.validToken(token) {
			writeErrors(w, http.StatusUnauthorized, amadeus.ErrorItem{
				Status: http.StatusUnauthorized,
				Code:   38190,
				Title:  "Invalid access token",
				Detail: "The access token provided in the Authorization header is invalid",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return true
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	writeErrors(w, http.StatusTooManyRequests, amadeus.ErrorItem{
		Status: http.StatusTooManyRequests,
		Code:   38194,
		Title:  "Too many requests",
		Detail: fmt.Sprintf("The network rate limit is exceeded, please try again in %s seconds", w.Header().Get("Retry-After")),
	})
}

// statusRecorder captures the response code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.ObserveHTTP(route, rec.code)
		log.Debug("%s %s -> %d in %s", r.Method, route, rec.code, time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn("failed to write response: %v", err)
	}
}

func writeErrors(w http.ResponseWriter, status int, items ...amadeus.ErrorItem) {
	w.Header().Set("Content-Type", "application/vnd.amadeus+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"errors": items}); err != nil {
		log.Warn("failed to write error response: %v", err)
	}
}

func writeOAuthError(w http.ResponseWriter, code, description string) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"error":             code,
		"error_description": description,
		"code":              38187,
		"title":             "Invalid parameters",
	})
}

func badRequest(w http.ResponseWriter, code int, title, detail, parameter string) {
	item := amadeus.ErrorItem{
		Status: http.StatusBadRequest,
		Code:   code,
		Title:  title,
		Detail: detail,
	}
	if parameter != "" {
		item.Source = &amadeus.ErrorSource{Parameter: parameter}
	}
	writeErrors(w, http.StatusBadRequest, item)
}

func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
