package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC *usecase.CategoryUseCase
	SupplierUC *usecase.SupplierUseCase
	ProductUC  *usecase.ProductUseCase
	Ledger     *inventory.MovementLedger
	KardexPDF  KardexRenderer
	Reconciler ReconcileEnqueuer
	// Health comprueba el almacén; nil = siempre ok.
	Health func(c *fiber.Ctx) error

	// JWTSecret vacío deja la API sin autenticación (createdBy queda vacío).
	JWTSecret         string
	JWTIssuer         string
	RequestsPerMinute int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c); err != nil {
				return writeError(c, err)
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	var middlewares []fiber.Handler
	if deps.RequestsPerMinute > 0 {
		middlewares = append(middlewares, RateLimit(deps.RequestsPerMinute))
	}
	if deps.JWTSecret != "" {
		middlewares = append(middlewares, AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	}
	api := app.Group("/api", middlewares...)

	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	movementHandler := NewMovementHandler(deps.Ledger, deps.KardexPDF, deps.Reconciler)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id/kardex.pdf", movementHandler.KardexPDF)
	products.Get("/:id/kardex", movementHandler.Kardex)
	products.Post("/:id/reconcile", movementHandler.Reconcile)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	movements := api.Group("/movements")
	movements.Post("/", movementHandler.Record)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Delete("/:id", movementHandler.Delete)
}
