package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/config"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/accounts"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/bids"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/notifications"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/projects"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/selection"
)

// Services are the domain services the API exposes.
type Services struct {
	Accounts      *accounts.Service
	Projects      *projects.Service
	Bids          *bids.Service
	Selection     *selection.Service
	Notifications *notifications.Dispatcher
	Hub           *realtime.Hub
}

// Mount registers every route on app.
func Mount(app *fiber.App, cfg config.Config, s Services) {
	timeout := cfg.RequestTimeout

	authH := &AuthHandler{
		Accounts:  s.Accounts,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
		Timeout:   timeout,
	}
	googleH := &GoogleOAuthHandler{
		Accounts:        s.Accounts,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		Timeout:         timeout,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	projectH := NewProjectHandler(s.Projects, s.Selection, timeout)
	categoryH := NewCategoryHandler(s.Projects)
	bidH := NewBidHandler(s.Bids, timeout)
	userH := NewUserHandler(s.Accounts, s.Notifications, timeout)
	rtH := NewRealtimeHandler(s.Hub)

	jwt := middleware.JWTAuth(cfg.JWTSecret)
	locals := middleware.AttachJWTLocals()
	clientOnly := middleware.RequireRoles(models.RoleClient)
	freelancerOnly := middleware.RequireRoles(models.RoleFreelancer)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"time": time.Now().UTC()}})
	})

	// auth
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	if cfg.GoogleEnabled() {
		api.Get("/auth/google/start", googleH.GoogleStart)
		api.Get("/auth/google/callback", googleH.GoogleCallback)
	}
	api.Get("/auth/me", jwt, locals, authH.Me)

	api.Get("/categories", categoryH.GetCategories)

	// projects; fixed paths before /:id
	api.Get("/projects", projectH.List)
	api.Post("/projects", jwt, locals, clientOnly, projectH.Create)
	api.Get("/projects/my-projects", jwt, locals, clientOnly, projectH.MyProjects)
	api.Get("/projects/:id", projectH.Get)
	api.Put("/projects/:id/select-freelancer", jwt, locals, clientOnly, projectH.SelectFreelancer)
	api.Put("/projects/:id", jwt, locals, clientOnly, projectH.Update)
	api.Delete("/projects/:id", jwt, locals, clientOnly, projectH.Delete)

	// bids
	api.Post("/bids", jwt, locals, freelancerOnly, bidH.Submit)
	api.Get("/bids/my-bids", jwt, locals, freelancerOnly, bidH.MyBids)
	api.Get("/bids/project/:projectId", jwt, locals, bidH.ListForProject)

	// users
	api.Get("/users/dashboard", jwt, locals, userH.Dashboard)
	api.Get("/users/notifications", jwt, locals, userH.Notifications)
	api.Put("/users/notifications/read", jwt, locals, userH.MarkNotificationsRead)
	api.Put("/users/profile", jwt, locals, userH.UpdateProfile)
	api.Get("/users/:id", userH.Profile)

	app.Get("/ws", jwt, locals, rtH.Upgrade, websocket.New(rtH.WebSocketHandler))
}
