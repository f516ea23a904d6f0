package httpx

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int64
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.headerWritten = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

func (rw *responseWriter) wroteHeader() bool {
	return rw.headerWritten
}

// RequestRecorder counts requests. *metrics.Metrics satisfies it.
type RequestRecorder interface {
	HTTPRequest(method string, code int)
}

// userSlot lets the access log see the user id set by auth middleware
// further down the chain.
type userSlot struct{ id string }

const userSlotKey contextKey = "userSlot"

func AccessLogMiddleware(log zerolog.Logger, rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			slot := &userSlot{}
			r = r.WithContext(contextWithUserSlot(r.Context(), slot))

			next.ServeHTTP(rw, r)

			if rec != nil {
				rec.HTTPRequest(r.Method, rw.statusCode)
			}

			ev := log.Info()
			if rw.statusCode >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Int64("bytes", rw.bytesWritten).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("request_id", RequestIDFrom(r)).
				Str("user_id", slot.id).
				Msg("access")
		})
	}
}
