package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/internal/application/production"
	"github.com/jhoicas/manufactura-api/pkg/jwt"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger     *inventory.Ledger
	Outbound   *outbound.Service
	Production *production.Service
	JWTSecret  string
	JWTIssuer  string
	Logger     *logger.Logger
	// Gatherer para /metrics; nil usa prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	AppName  string
	// SwaggerFile se sirve en /docs solo si el archivo existe.
	SwaggerFile string
}

// NewApp construye la aplicación Fiber con middlewares, /health, /metrics y las rutas /api.
func NewApp(deps RouterDeps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(deps.Logger.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Manufactura API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token; leer está
// permitido a cualquier rol, escribir depende del rol.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleAlmacen, jwt.RoleProduccion)
	almacen := RequireRole(jwt.RoleAdmin, jwt.RoleAlmacen)
	produccion := RequireRole(jwt.RoleAdmin, jwt.RoleProduccion)

	// Lotes
	batchHandler := NewBatchHandler(deps.Ledger, log)
	api.Post("/batches", almacen, batchHandler.Receive)
	api.Get("/batches/:id", anyRole, batchHandler.Get)
	api.Get("/materials/:id/batches", anyRole, batchHandler.ListByMaterial)

	// Stock agregado
	stockHandler := NewStockHandler(deps.Ledger, log)
	stock := api.Group("/stock")
	stock.Get("/", anyRole, stockHandler.List)
	stock.Get("/replenishment", anyRole, stockHandler.Replenishment)
	stock.Get("/:materialID", anyRole, stockHandler.Get)
	stock.Put("/:materialID/threshold", almacen, stockHandler.SetThreshold)
	stock.Post("/:materialID/reconcile", almacen, stockHandler.Reconcile)

	// Notas de salida
	outboundHandler := NewOutboundHandler(deps.Outbound, log)
	api.Post("/outbound-notes", almacen, outboundHandler.Create)
	api.Get("/outbound-notes/:id", anyRole, outboundHandler.Get)

	// Órdenes de producción
	productionHandler := NewProductionHandler(deps.Production, log)
	api.Post("/production-orders", produccion, productionHandler.Create)
	api.Get("/production-orders/:id", anyRole, productionHandler.Get)

	// Trazabilidad
	traceHandler := NewTraceabilityHandler(deps.Ledger, log)
	trace := api.Group("/traceability", anyRole)
	trace.Get("/operations/:kind/:id", traceHandler.ByOperation)
	trace.Get("/batches/:id", traceHandler.ByBatch)
	trace.Get("/materials/:id", traceHandler.ByMaterial)
}
