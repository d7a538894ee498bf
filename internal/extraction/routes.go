package extraction

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the Extraction Service's HTTP surface onto r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/analyze", h.HandleAnalyze)
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/events", h.HandleEvents)
		r.Get("/status", h.HandleStatus)
		r.Post("/start-processor", h.HandleStartProcessor)
		r.Post("/stop-processor", h.HandleStopProcessor)
	})
}
