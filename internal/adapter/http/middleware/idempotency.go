package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/creditledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader  = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyMiddleware replays the stored response of a POST that was
// already served under the same Idempotency-Key.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		// Scope keys to the endpoint so one key cannot replay another route.
		key = r.Method + ":" + r.URL.Path + ":" + key

		exists, cachedResponse, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if cachedResponse == nil || string(cachedResponse) == usecase.IdempotencyPending {
				writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}
			status, body := decodeStored(cachedResponse)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.WriteHeader(status)
			w.Write(body)
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Store successful responses; anything else frees the key for a retry.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			m.store.Update(r.Context(), key, encodeStored(recorder.statusCode, recorder.body.Bytes()), m.ttl)
			return
		}
		m.store.Release(r.Context(), key)
	})
}

// Stored responses are "<status>\n<body>".
func encodeStored(status int, body []byte) []byte {
	out := strconv.AppendInt(nil, int64(status), 10)
	out = append(out, '\n')
	return append(out, body...)
}

func decodeStored(stored []byte) (int, []byte) {
	head, body, ok := bytes.Cut(stored, []byte{'\n'})
	if !ok {
		return http.StatusOK, stored
	}
	status, err := strconv.Atoi(string(head))
	if err != nil {
		return http.StatusOK, stored
	}
	return status, body
}

type responseRecorder struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
