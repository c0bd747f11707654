package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
)

// NewApp builds the Fiber app with the shared error handler and middleware stack.
func NewApp(bodyLimit int64) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Recruiting API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(bodyLimit) + 1024*1024,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	return app
}

type Router struct {
	Accounts     *AccountHandler
	Companies    *CompanyHandler
	Documents    *DocumentHandler
	Offers       *OfferHandler
	Applications *ApplicationHandler
	Auth         fiber.Handler
	Limiter      middleware.Limiter
	Policy       config.PolicyConfig
}

func (r *Router) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/auth/register", r.Accounts.HandleRegister)
	api.Post("/auth/login", r.Accounts.HandleLogin)
	api.Get("/offres", r.Offers.HandleList)
	api.Get("/offres/:id", r.Offers.HandleGet)

	candidate := middleware.RequireRole(models.RoleCandidate)
	company := middleware.RequireRole(models.RoleCompany)

	api.Get("/me", r.Auth, r.Accounts.HandleMe)

	api.Get("/companies/me", r.Auth, company, r.Companies.HandleGetMine)
	api.Put("/companies/me", r.Auth, company, r.Companies.HandleUpdateMine)
	api.Post("/companies/me/toggle-recevoir", r.Auth, company, r.Companies.HandleToggle)
	api.Get("/companies/:id", r.Companies.HandleGet)

	api.Get("/entreprise/offres", r.Auth, company, r.Offers.HandleListMine)
	api.Post("/entreprise/offres", r.Auth, company, r.Offers.HandleCreate)
	api.Put("/offres/:id", r.Auth, company, r.Offers.HandleUpdate)
	api.Delete("/offres/:id", r.Auth, company, r.Offers.HandleArchive)
	api.Post("/offres/:id/toggle-recevoir", r.Auth, company, r.Offers.HandleToggle)

	api.Post("/cvs", r.Auth, candidate, r.Documents.HandleUpload)
	api.Get("/cvs", r.Auth, candidate, r.Documents.HandleList)
	api.Get("/cvs/:id", r.Auth, candidate, r.Documents.HandleGet)
	api.Delete("/cvs/:id", r.Auth, candidate, r.Documents.HandleDelete)
	api.Get("/cvs/:id/matches", r.Auth, candidate, r.Documents.HandleMatches)

	applyLimit := middleware.RateLimit(r.Limiter, r.Policy.ApplyPerMinute, time.Minute, applyRateKey)
	bulkLimit := middleware.RateLimit(r.Limiter, r.Policy.BulkSendsPerHour, time.Hour, bulkRateKey)

	api.Post("/envois/bulk", r.Auth, bulkLimit, r.Applications.HandleBulk)
	api.Post("/envois", r.Auth, applyLimit, r.Applications.HandleApply)
	api.Get("/envois", r.Auth, r.Applications.HandleList)
	api.Get("/envois/:id", r.Auth, r.Applications.HandleGet)
	api.Delete("/envois/:id", r.Auth, r.Applications.HandleDelete)
	api.Patch("/envois/:id/statut", r.Auth, company, r.Applications.HandleSetStatus)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Recruiting API",
			"version": "1.0.0",
		})
	})
}
