package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	sharedcontext "github.com/hyperterse/graphgate/core/shared/context"
)

// RequestLogger copies the request ID into the shared context and logs one
// debug line per request with status and latency
func RequestLogger(next http.Handler) http.Handler {
	log := logging.New("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		requestID := chimiddleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = sharedcontext.GenerateRequestID()
		}
		r = r.WithContext(sharedcontext.WithRequestID(r.Context(), requestID))

		defer func() {
			log.WithField("request_id", requestID).
				Debugf("%s %s %d %dB %s", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}
