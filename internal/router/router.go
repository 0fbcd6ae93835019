package router

import (
	"net/http"

	"cafe-kiosk/internal/handler"
	"cafe-kiosk/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	profileHandler *handler.ProfileHandler,
	apiKey, staffKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.APIKeyAuth(apiKey, logger))

		api.Post("/orders", orderHandler.Checkout)
		api.Get("/orders/{code}", orderHandler.GetByCode)
		api.Get("/profiles/{userID}/points", profileHandler.Points)

		// The board listing and status changes come from the register,
		// never from customers.
		api.Group(func(staff chi.Router) {
			staff.Use(middleware.StaffKeyAuth(staffKey, logger))
			staff.Get("/orders", orderHandler.ListActive)
			staff.Post("/orders/{code}/transition", orderHandler.Transition)
		})
	})

	return r
}
