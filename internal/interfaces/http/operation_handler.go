package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/internal/infrastructure/export"
)

// OperationHandler diario de operaciones y exportaciones.
type OperationHandler struct {
	journal *inventory.JournalUseCase
}

// NewOperationHandler construye el handler.
func NewOperationHandler(journal *inventory.JournalUseCase) *OperationHandler {
	return &OperationHandler{journal: journal}
}

func operationFilter(c *fiber.Ctx) (repository.OperationFilter, error) {
	f := repository.OperationFilter{
		Query:     c.Query("q"),
		ProductID: c.Query("product_id"),
		BatchID:   c.Query("batch_id"),
		Type:      c.Query("type"),
	}
	var err error
	if f.From, err = dateQuery(c, "from", false); err != nil {
		return f, err
	}
	if f.To, err = dateQuery(c, "to", true); err != nil {
		return f, err
	}
	return f, nil
}

// List godoc
// @Summary      Diario de operaciones
// @Tags         operations
// @Security     Bearer
// @Produce      json
// @Param        q           query  string  false  "Número de lote o producto"
// @Param        product_id  query  string  false  "Producto"
// @Param        batch_id    query  string  false  "Lote"
// @Param        type        query  string  false  "receipt|deduction"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD"
// @Param        sort        query  string  false  "occurred_at|quantity|type (por defecto -occurred_at)"
// @Success      200  {object}  dto.OperationListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/operations [get]
func (h *OperationHandler) List(c *fiber.Ctx) error {
	f, err := operationFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	switch f.Type {
	case "", entity.OperationTypeReceipt, entity.OperationTypeDeduction:
	default:
		return badRequest(c, "VALIDATION", "type debe ser receipt o deduction")
	}
	page := pageFromQuery(c)
	list, err := h.journal.ListOperations(c.UserContext(), f, sortFromQuery(c), page)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OperationResponse, 0, len(list))
	for _, op := range list {
		items = append(items, dto.ToOperationResponse(op))
	}
	return c.JSON(dto.OperationListResponse{Items: items, Page: pageResponse(page, len(items))})
}

// ExportOperations godoc
// @Summary      Exportar diario de operaciones
// @Tags         export
// @Security     Bearer
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "json|xlsx"  default(json)
// @Success      200  {array}  dto.OperationExportResponse
// @Router       /api/export/operations [get]
func (h *OperationHandler) ExportOperations(c *fiber.Ctx) error {
	f, err := operationFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.journal.ExportOperations(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	if c.Query("format") == "xlsx" {
		setAttachment(c, "operations.xlsx")
		return export.WriteOperations(c.Response().BodyWriter(), rows)
	}
	out := make([]dto.OperationExportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.OperationExportResponse{
			ID:          r.ID,
			Type:        r.Type,
			TypeLabel:   r.TypeLabel,
			BatchNumber: r.BatchNumber,
			ProductName: r.ProductName,
			OccurredAt:  r.OccurredAt,
			Quantity:    r.Quantity,
			Reason:      r.Reason,
			Document:    r.Document,
			Note:        r.Note,
		})
	}
	return c.JSON(out)
}

// ExportStock godoc
// @Summary      Exportar stock actual
// @Tags         export
// @Security     Bearer
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "json|xlsx"  default(json)
// @Success      200  {array}  dto.StockExportResponse
// @Router       /api/export/stock [get]
func (h *OperationHandler) ExportStock(c *fiber.Ctx) error {
	rows, err := h.journal.ExportStockLevels(c.UserContext(), repository.StockFilter{Query: c.Query("q")})
	if err != nil {
		return writeError(c, err)
	}
	if c.Query("format") == "xlsx" {
		setAttachment(c, "stock.xlsx")
		return export.WriteStockLevels(c.Response().BodyWriter(), rows)
	}
	out := make([]dto.StockExportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockExportResponse{Code: r.Code, Name: r.Name, Quantity: r.Quantity})
	}
	return c.JSON(out)
}

func setAttachment(c *fiber.Ctx, filename string) {
	c.Set(fiber.HeaderContentType, export.ContentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
}
