package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approvalsapi "github.com/obra-coop/obranet/internal/api/approvals"
	"github.com/obra-coop/obranet/internal/api/auth"
	checklistsapi "github.com/obra-coop/obranet/internal/api/checklists"
	dashboardapi "github.com/obra-coop/obranet/internal/api/dashboard"
	documentsapi "github.com/obra-coop/obranet/internal/api/documents"
	incidentsapi "github.com/obra-coop/obranet/internal/api/incidents"
	"github.com/obra-coop/obranet/internal/api/messages"
	"github.com/obra-coop/obranet/internal/api/middleware"
	notificationsapi "github.com/obra-coop/obranet/internal/api/notifications"
	progressapi "github.com/obra-coop/obranet/internal/api/progress"
	projectsapi "github.com/obra-coop/obranet/internal/api/projects"
	"github.com/obra-coop/obranet/internal/api/respond"
	tasksapi "github.com/obra-coop/obranet/internal/api/tasks"
	usersapi "github.com/obra-coop/obranet/internal/api/users"
	"github.com/obra-coop/obranet/internal/models"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	jwtService := auth.NewJWTService(s.config.JWTSecret, s.config.AccessTokenTTL)
	loginLimiter := middleware.NewRateLimiter(s.config.LoginRatePerMinute)

	authHandler := auth.NewHandler(s.storage.Users(), jwtService)
	userHandler := usersapi.NewHandler(s.storage.Users())
	projectHandler := projectsapi.NewHandler(s.projects)
	taskHandler := tasksapi.NewHandler(s.tasks)
	approvalHandler := approvalsapi.NewHandler(s.approvals)
	incidentHandler := incidentsapi.NewHandler(s.incidents, s.storage.Projects(), s.renderer)
	checklistHandler := checklistsapi.NewHandler(s.checklist, s.clock)
	notificationHandler := notificationsapi.NewHandler(s.notify)
	dashboardHandler := dashboardapi.NewHandler(s.dashboard)
	progressHandler := progressapi.NewHandler(s.progress)
	documentHandler := documentsapi.NewHandler(s.documents)
	messageHandler := messages.NewHandler(s.storage.Messages())

	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Prometheus)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(loginLimiter))
			r.Post("/auth/login", authHandler.Login)
		})
		r.Post("/contact", messageHandler.Submit)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService, s.storage.Users()))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Put("/me/password", userHandler.ChangePassword)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireGlobalRole(models.RoleAdmin))
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
					r.Get("/{id}", userHandler.GetByID)
					r.Put("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", projectHandler.GetByID)
					r.Put("/", projectHandler.Update)
					r.Post("/archive", projectHandler.SetArchived)

					r.Get("/members", projectHandler.Members)
					r.Put("/members/{userID}", projectHandler.BindRole)
					r.Delete("/members/{userID}", projectHandler.UnbindRole)

					r.Get("/tasks", taskHandler.ListByProject)
					r.Post("/tasks", taskHandler.Create)

					r.Get("/incidents", incidentHandler.ListByProject)
					r.Post("/incidents", incidentHandler.Report)

					r.Get("/checklist", checklistHandler.DayView)
					r.Post("/checklist/items", checklistHandler.AddItem)

					r.Get("/progress", progressHandler.ListByProject)
					r.Post("/progress", progressHandler.Record)

					r.Get("/documents", documentHandler.ListByProject)
					r.Post("/documents", documentHandler.Upload)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/mine", taskHandler.ListMine)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Get("/", taskHandler.GetByID)
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
					r.Put("/status", taskHandler.SetStatus)

					r.Get("/comments", taskHandler.ListComments)
					r.Post("/comments", taskHandler.AddComment)

					r.Post("/flows", approvalHandler.Create)
				})
			})

			r.Route("/flows", func(r chi.Router) {
				r.Get("/mine", approvalHandler.ListMine)
				r.Get("/{flowID}", approvalHandler.GetByID)
				r.Post("/{flowID}/decision", approvalHandler.Decide)
			})

			r.Route("/incidents", func(r chi.Router) {
				r.Get("/mine", incidentHandler.ListMine)
				r.Get("/{incidentID}", incidentHandler.GetByID)
				r.Put("/{incidentID}/triage", incidentHandler.UpdateTriage)
				r.Get("/{incidentID}/report", incidentHandler.Download)
			})

			r.Route("/checklist/items/{itemID}", func(r chi.Router) {
				r.Put("/active", checklistHandler.SetItemActive)
				r.Put("/completion", checklistHandler.SetCompletion)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.ListMine)
				r.Get("/unread", notificationHandler.UnreadCount)
			})

			r.Get("/progress/{entryID}/photos", progressHandler.Photos)
			r.Get("/documents/{documentID}/download", documentHandler.Download)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireGlobalRole(models.RoleAdmin))
				r.Get("/dashboard", dashboardHandler.Summary)

				r.Route("/messages", func(r chi.Router) {
					r.Get("/", messageHandler.List)
					r.Put("/{messageID}/read", messageHandler.SetRead)
					r.Delete("/{messageID}", messageHandler.Delete)
				})
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.OK(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
