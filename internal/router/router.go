package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/handler"
	mw "github.com/cessadesk/cessadesk/internal/middleware"
)

func New(
	jwtSecret string,
	accounts auth.AccountLookup,
	authH *handler.AuthHandler,
	intakeH *handler.IntakeHandler,
	subH *handler.SubmissionHandler,
	lawyerH *handler.LawyerHandler,
	dashH *handler.DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	// Stored objects for backends without public URLs
	r.Get("/files/*", subH.Object)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/intake/slots", intakeH.Slots)
		r.Post("/intake/mask", intakeH.Mask)
		r.Post("/intake/validate", intakeH.Validate)
		r.Post("/submissions", intakeH.Submit)

		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/logout", authH.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))
			r.Use(auth.RequireActive(accounts))

			r.Get("/auth/me", authH.Me)
			r.Get("/dashboard", dashH.Dashboard)

			// Submissions
			r.Get("/submissions", subH.List)
			r.Get("/submissions/{subId}", subH.Get)
			r.Get("/submissions/{subId}/files/{idx}", subH.File)
			r.Patch("/submissions/{subId}/status", subH.SetStatus)
			r.Delete("/submissions/{subId}", subH.Delete)

			// Accounts
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleSuperadmin))
				r.Get("/lawyers", lawyerH.List)
				r.Patch("/lawyers/{lawyerId}/status", lawyerH.SetStatus)
				r.Delete("/lawyers/{lawyerId}", lawyerH.Delete)
			})
		})
	})

	return r
}
