package routes

import (
	"github.com/go-chi/chi/v5"

	"pollen/management/internal/api"
	"pollen/management/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.OperatorMiddleware)

		v1.Route("/rotation", func(rotation chi.Router) {
			rotation.Get("/promotion-candidates", api.GetPromotionCandidatesHandler(deps))
			rotation.Get("/demotion-candidates", api.GetDemotionCandidatesHandler(deps))
			rotation.Post("/dismissal-scan", api.RunDismissalScanHandler(deps))
			rotation.Get("/pending-dismissal", api.GetPendingDismissalHandler(deps))
			rotation.Post("/review", api.TriggerReviewHandler(deps))
			rotation.Post("/promote", api.ExecutePromotionHandler(deps))
			rotation.Get("/history/{memberId}", api.GetRoleHistoryHandler(deps))
		})

		v1.Route("/compensation", func(comp chi.Router) {
			comp.Post("/calculate", api.CalculateAllocationsHandler(deps))
			comp.Get("/members", api.ListCompensationMembersHandler(deps))
			comp.Post("/batch", api.BatchSaveHandler(deps))
			comp.Post("/archive", api.ArchiveHandler(deps))
			comp.Get("/report", api.GetReportHandler(deps))
			comp.Put("/records/{id}", api.UpdateRecordHandler(deps))
			comp.Post("/score", api.CalculateScoreHandler(deps))
		})

		v1.Get("/config", api.GetConfigHandler(deps))
		v1.Put("/config", api.SaveConfigHandler(deps))
	})
}
