package http

import (
	"log/slog"
	"net/http"

	"nlschedule/internal/delivery/http/controllers"
	"nlschedule/internal/delivery/http/helpers"
	"nlschedule/internal/delivery/http/middleware"
	"nlschedule/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	scheduleController *controllers.ScheduleController,
	authController *controllers.AuthController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Schedule
	mux.HandleFunc("POST /api/schedule/add-event", auth(scheduleController.AddEvent))
	mux.HandleFunc("POST /api/schedule/confirm-event", auth(scheduleController.ConfirmEvent))
	mux.HandleFunc("POST /api/schedule/get-events", auth(scheduleController.GetEvents))
	mux.HandleFunc("GET /api/schedule/events", auth(scheduleController.ListEventsInRange))
	mux.HandleFunc("GET /api/schedule/events.ics", auth(scheduleController.ExportICS))
	mux.HandleFunc("DELETE /api/schedule/events/{eventID}", auth(scheduleController.DeleteEvent))

	// Auth
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /auth/me", auth(authController.Me))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
