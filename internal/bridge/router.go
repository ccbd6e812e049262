package bridge

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/bravia/internal/logging"
)

// maxRequestBodySize caps request bodies; every body here is a small JSON
// object.
const maxRequestBodySize = 64 << 10

func (b *Bridge) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", b.handleHealth)
		r.Get("/state", b.handleGetState)
		r.Get("/network", b.handleGetNetwork)

		r.Put("/power", b.handleSetPower)
		r.Post("/power/toggle", b.handleTogglePower)

		r.Put("/volume", b.handleSetVolume)
		r.Post("/volume/up", b.handleVolumeStep(+1))
		r.Post("/volume/down", b.handleVolumeStep(-1))

		r.Put("/mute", b.handleSetMute)
		r.Put("/picture-mute", b.handleSetPictureMute)
		r.Post("/picture-mute/toggle", b.handleTogglePictureMute)

		r.Put("/input", b.handleSetInput)
		r.Put("/scene", b.handleSetScene)

		r.Get("/ircc", b.handleListIRCC)
		r.Post("/ircc/{name}", b.handleSendIRCC)

		r.Post("/send", b.handleSend)

		r.Get("/events", b.handleEvents)
	})

	if b.cfg.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	})
	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			// Hijacked for the event stream.
			status = http.StatusSwitchingProtocols
		}
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, status)
	})
}

func bodySizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
