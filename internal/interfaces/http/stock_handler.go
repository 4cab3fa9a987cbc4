package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

// StockHandler listado de niveles de stock.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Niveles de stock por producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        q     query  string  false  "Código o nombre de producto"
// @Param        sort  query  string  false  "code|name|quantity (prefijo - = desc)"
// @Success      200   {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.uc.ListStockLevels(c.UserContext(), repository.StockFilter{Query: c.Query("q")}, sortFromQuery(c), page)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.StockLevelResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.ToStockLevelResponse(l))
	}
	return c.JSON(dto.StockListResponse{Items: items, Page: pageResponse(page, len(items))})
}
