// Package server assembles the fiber application and its routes.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/project-planner/internal/auth"
	"github.com/fairyhunter13/project-planner/internal/handler"
)

// Deps are the handlers and settings the routes are built from.
type Deps struct {
	Health    *handler.HealthHandler
	Coupons   *handler.CouponHandler
	Planner   *handler.PlannerHandler
	Gatherer  prometheus.Gatherer
	JWTSecret []byte
	AdminKey  string
	// AccessLog disables the request logger middleware when false.
	AccessLog bool
}

// New returns a fiber app with middleware and every planner route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Project Planner",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation waits on the model
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", d.Health.Check)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	admin := api.Group("/coupons", auth.RequireAdminKey(d.AdminKey))
	admin.Post("", d.Coupons.CreateCoupon)
	admin.Get("/:name", d.Coupons.GetCoupon)

	user := auth.RequireUser(d.JWTSecret)
	api.Get("/tokens", user, d.Planner.Balance)
	api.Post("/generate-ideas", user, d.Planner.GenerateIdeas)
	api.Post("/apply-coupon", user, d.Coupons.ApplyCoupon)
	api.Get("/creations", user, d.Planner.Creations)
	api.Post("/creations", user, d.Planner.Creations)

	return app
}
