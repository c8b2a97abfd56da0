package devserver

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	accessKey    contextKey = "access"
)

// RequestID attaches a ULID request identifier to the context and the
// response headers.
func RequestID(next http.Handler) http.Handler {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// Logging logs each request with its request ID.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(requestIDKey).(string)
			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carteira_devserver_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carteira_devserver_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)
)

// Metrics records request counts and durations.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// Authenticate verifies the bearer token, checks that its session is still
// the active one for the access, and puts the access record on the context.
func Authenticate(jwtManager *JWTManager, store *MemStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || token == r.Header.Get("Authorization") {
				writeError(w, http.StatusUnauthorized, "Sessão inválida", nil)
				return
			}

			claims, err := jwtManager.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Sessão expirada", nil)
				return
			}

			if !store.SessionActive(claims.AccessID, claims.SessionID) {
				writeError(w, http.StatusUnauthorized, "Sessão encerrada em outro dispositivo", nil)
				return
			}

			access, ok := store.GetAccess(claims.AccessID)
			if !ok || !access.Active {
				writeError(w, http.StatusUnauthorized, "Acesso desativado", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accessKey, access)))
		})
	}
}

// callerAccess returns the authenticated access from the context.
func callerAccess(r *http.Request) *AccessRecord {
	access, _ := r.Context().Value(accessKey).(*AccessRecord)
	return access
}
