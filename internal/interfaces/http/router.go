package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog    *inventory.CatalogUseCase
	Ledger     *inventory.BatchLedgerUseCase
	Deductions *inventory.DeductionUseCase
	Stock      *inventory.StockUseCase
	Journal    *inventory.JournalUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
// admin: todo; operator: crear productos, registrar y recibir lotes; user: solo lectura.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleUser)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	adminOnly := RequireRole(jwt.RoleAdmin)

	productHandler := NewProductHandler(deps.Catalog, deps.Stock, deps.Deductions)
	deductionHandler := NewDeductionHandler(deps.Deductions)
	products := api.Group("/products")
	products.Get("/", anyRole, productHandler.List)
	products.Post("/", writers, productHandler.Create)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/live-batches", anyRole, productHandler.LiveBatches)
	products.Get("/:id/stock", anyRole, productHandler.Stock)
	products.Get("/:id/consistency", anyRole, productHandler.Consistency)
	products.Post("/:id/deductions", adminOnly, deductionHandler.DeductAuto)
	products.Post("/:id/deductions/batches", adminOnly, deductionHandler.DeductBatches)

	batchHandler := NewBatchHandler(deps.Ledger)
	batches := api.Group("/batches")
	batches.Get("/", anyRole, batchHandler.List)
	batches.Post("/", writers, batchHandler.Create)
	batches.Get("/:id", anyRole, batchHandler.GetByID)
	batches.Put("/:id", writers, batchHandler.Update)
	batches.Delete("/:id", adminOnly, batchHandler.Delete)
	batches.Post("/:id/receive", writers, batchHandler.Receive)

	stockHandler := NewStockHandler(deps.Stock)
	api.Get("/stock", anyRole, stockHandler.List)

	operationHandler := NewOperationHandler(deps.Journal)
	api.Get("/operations", anyRole, operationHandler.List)
	api.Get("/export/operations", anyRole, operationHandler.ExportOperations)
	api.Get("/export/stock", anyRole, operationHandler.ExportStock)
}
