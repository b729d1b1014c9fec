package http

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/fwojciec/chatgate"
	"github.com/rs/zerolog/hlog"
)

// middleware wraps h with request-scoped logging and panic recovery. The
// logger is attached first so that recovery and handlers can use
// hlog.FromRequest.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.recoverer(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RemoteAddrHandler("remote_addr")(h)
	h = hlog.RequestIDHandler("request_id", "X-Request-Id")(h)
	h = hlog.NewHandler(s.logger)(h)
	return h
}

func (s *Server) recoverer(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				hlog.FromRequest(r).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				writeError(w, http.StatusInternalServerError, chatgate.CodeInternal, "internal error")
			}
		}()
		h.ServeHTTP(w, r)
	})
}
