package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

// ProductHandler maneja las peticiones HTTP del catálogo y las vistas por producto.
type ProductHandler struct {
	catalog    *inventory.CatalogUseCase
	stock      *inventory.StockUseCase
	deductions *inventory.DeductionUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(catalog *inventory.CatalogUseCase, stock *inventory.StockUseCase, deductions *inventory.DeductionUseCase) *ProductHandler {
	return &ProductHandler{catalog: catalog, stock: stock, deductions: deductions}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	p, err := h.catalog.CreateProduct(c.UserContext(), inventory.CreateProductInput{
		Code:          in.Code,
		Name:          in.Name,
		Unit:          in.Unit,
		ShelfLifeDays: in.ShelfLifeDays,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToProductResponse(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Búsqueda por código o nombre"
// @Param        sort    query  string  false  "code|name|unit|shelf_life_days (prefijo - = desc)"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.catalog.ListProducts(c.UserContext(), repository.ProductFilter{Query: c.Query("q")}, sortFromQuery(c), page)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return c.JSON(dto.ProductListResponse{Items: items, Page: pageResponse(page, len(items))})
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Solo si ningún lote, operación o stock lo referencia.
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LiveBatches godoc
// @Summary      Lotes con saldo vivo del producto (orden FEFO)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.LiveBatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/live-batches [get]
func (h *ProductHandler) LiveBatches(c *fiber.Ctx) error {
	list, err := h.deductions.GetLiveBatchesForProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.LiveBatchResponse, 0, len(list))
	for _, lb := range list {
		items = append(items, dto.ToLiveBatchResponse(lb))
	}
	return c.JSON(items)
}

// Stock godoc
// @Summary      Stock actual del producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, err := h.stock.CurrentLevel(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockLevelResponse{ProductID: id, Quantity: qty})
}

// Consistency godoc
// @Summary      Verifica stock = suma de saldos vivos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ConsistencyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/consistency [get]
func (h *ProductHandler) Consistency(c *fiber.Ctx) error {
	r, err := h.stock.CheckConsistency(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConsistencyResponse{
		ProductID:   r.ProductID,
		StockLevel:  r.StockLevel,
		LiveTotal:   r.LiveTotal,
		LiveBatches: r.LiveBatches,
		Consistent:  r.Consistent,
	})
}
