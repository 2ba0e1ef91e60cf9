package api

import (
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/collegepedia/collegepedia/internal/api/handler"
	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/college"
	"github.com/collegepedia/collegepedia/internal/department"
	"github.com/collegepedia/collegepedia/internal/district"
	"github.com/collegepedia/collegepedia/internal/profile"
	"github.com/collegepedia/collegepedia/internal/session"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger      handler.Pinger
	SessionPinger handler.Pinger
	Version       string
	OpenAPISpec   []byte

	Sessions       session.Source
	ResolveTimeout time.Duration
	AuthService    handler.AuthService
	Enforcer       handler.RoleReconciler
	CookieSecure   bool
	ReservedNames  []string

	Users       handler.Counter
	Profiles    profile.Repository
	Districts   district.Repository
	Colleges    college.Repository
	Departments department.Repository
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.SessionPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	timeout := deps.ResolveTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(deps.Sessions, timeout))

		authHandler := handler.NewAuthHandler(deps.AuthService, deps.Enforcer, handler.AuthHandlerConfig{
			CookieSecure:  deps.CookieSecure,
			ReservedNames: deps.ReservedNames,
		})
		r.Route("/auth", func(r chi.Router) {
			r.Get("/", authHandler.Page)
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/signout", authHandler.SignOut)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/session", authHandler.Session)
			r.Patch("/user", authHandler.UpdateUser)
			r.Post("/recover", authHandler.Recover)
			r.Post("/recover/verify", authHandler.VerifyRecovery)
			r.Put("/password", authHandler.UpdatePassword)
			r.Get("/events", authHandler.Events)
		})

		homeHandler := handler.NewHomeHandler(deps.Colleges, deps.Districts, deps.Departments)
		collegeHandler := handler.NewCollegeHandler(deps.Colleges, deps.Departments)
		departmentHandler := handler.NewDepartmentHandler(deps.Departments)
		districtHandler := handler.NewDistrictHandler(deps.Districts, deps.Colleges)

		r.Get("/", homeHandler.ServeHTTP)
		r.Get("/search", homeHandler.Search)
		r.Get("/colleges", collegeHandler.List)
		r.Get("/colleges/{type}", collegeHandler.ListByType)
		r.Get("/college/{id}", collegeHandler.Get)
		r.Get("/districts", districtHandler.List)
		r.Get("/districts/{id}/colleges", districtHandler.Colleges)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))

			r.Post("/colleges", collegeHandler.Create)
			r.Patch("/college/{id}", collegeHandler.Update)
			r.Delete("/college/{id}", collegeHandler.Delete)
			r.Post("/college/{id}/departments", departmentHandler.Create)
			r.Patch("/departments/{id}", departmentHandler.Update)
			r.Delete("/departments/{id}", departmentHandler.Delete)

			dashboardHandler := handler.NewDashboardHandler(deps.Colleges)
			r.Get("/dashboard", dashboardHandler.ServeHTTP)

			adminHandler := handler.NewAdminHandler(handler.AdminCounters{
				Users:       deps.Users,
				Profiles:    deps.Profiles,
				Colleges:    deps.Colleges,
				Districts:   deps.Districts,
				Departments: deps.Departments,
			}, deps.Profiles)
			r.Get("/admin", adminHandler.ServeHTTP)
		})
	})

	return r
}
