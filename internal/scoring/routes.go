package scoring

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the Scoring Service's HTTP surface onto r. reload
// implements initialize_economic_data() by reloading the artifact store's
// reference tables into the document store.
func (h *Handler) RegisterRoutes(r chi.Router, reload InitializeEconomicDataFunc) {
	r.Get("/health", h.HandleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/predict", h.HandlePredict)
		r.Post("/predict", h.HandlePredict)
		r.Get("/signals", h.HandleSignals)
		r.Get("/status", h.HandleStatus)
		r.Post("/start-processor", h.HandleStartProcessor)
		r.Post("/stop-processor", h.HandleStopProcessor)
		r.Post("/simulate", h.HandleSimulate)
		r.Post("/initialize-economic-data", h.HandleInitializeEconomicData(reload))
	})
}
