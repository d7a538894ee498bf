package ingestion

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the Ingestion Service's HTTP surface onto r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scheduler/status", h.HandleSchedulerStatus)
		r.Get("/automation/logs", h.HandleAutomationLogs)
		r.Get("/articles", h.HandleArticles)
		r.Get("/scrape", h.HandleScrape)
		r.Post("/scrape", h.HandleScrape)
	})
}
