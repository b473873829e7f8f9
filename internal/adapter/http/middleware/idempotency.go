package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankrecon/internal/infrastructure/logger"
	"github.com/iho/bankrecon/internal/usecase"
)

// IdempotencyKeyHeader is the header name for idempotency keys.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayHeader marks a response served from the idempotency store.
const ReplayHeader = "X-Idempotency-Replay"

// storedResponse is what a completed keyed request leaves in the store.
type storedResponse struct {
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// IdempotencyMiddleware makes keyed POST and PUT requests safe to retry: the
// first request under a key runs, later ones with the same body get its
// response back.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	maxBody int64
	logger  zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A ttl <= 0
// falls back to usecase.IdempotencyKeyTTL.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, log zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: log}
}

// WithMaxBody caps how much of a keyed request body is buffered for
// fingerprinting. Larger bodies are rejected with 413.
func (m *IdempotencyMiddleware) WithMaxBody(n int64) *IdempotencyMiddleware {
	m.maxBody = n
	return m
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
			next.ServeHTTP(w, r)
			return
		}

		if m.maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, m.maxBody)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		// The same key on two endpoints is two requests.
		key = r.Method + ":" + r.URL.Path + ":" + key
		hash := fingerprint(body)
		log := logger.FromContext(r.Context(), m.logger)

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency store unavailable, serving without replay protection")
			next.ServeHTTP(w, r)
			return
		}

		if exists {
			m.replay(w, cached, hash)
			return
		}

		rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.statusCode < 200 || rec.statusCode >= 300 {
			if err := m.store.Release(r.Context(), key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
			}
			return
		}

		stored, err := json.Marshal(storedResponse{
			RequestHash: hash,
			Status:      rec.statusCode,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(r.Context(), key, stored, m.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, cached []byte, hash string) {
	if cached == nil || string(cached) == usecase.IdempotencyPendingMarker {
		writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress")
		return
	}

	var prev storedResponse
	if err := json.Unmarshal(cached, &prev); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "stored idempotent response is unreadable")
		return
	}
	if prev.RequestHash != hash {
		writeJSONError(w, http.StatusUnprocessableEntity, "idempotency key was already used with a different request")
		return
	}

	if prev.ContentType != "" {
		w.Header().Set("Content-Type", prev.ContentType)
	}
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(prev.Status)
	w.Write(prev.Body)
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
