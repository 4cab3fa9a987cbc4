package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// DeductionHandler bajas de inventario por producto.
type DeductionHandler struct {
	uc *inventory.DeductionUseCase
}

// NewDeductionHandler construye el handler.
func NewDeductionHandler(uc *inventory.DeductionUseCase) *DeductionHandler {
	return &DeductionHandler{uc: uc}
}

// DeductAuto godoc
// @Summary      Baja automática (FEFO)
// @Description  Reparte la cantidad entre los lotes vivos empezando por el que vence antes.
// @Tags         deductions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.AutoDeductionRequest  true  "Cantidad y causa"
// @Success      201   {object}  dto.DeductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/deductions [post]
func (h *DeductionHandler) DeductAuto(c *fiber.Ctx) error {
	var in dto.AutoDeductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	r, err := h.uc.DeductByProduct(c.UserContext(), inventory.AutoDeductionRequest{
		ProductID: c.Params("id"),
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Document:  in.Document,
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDeductionResponse(r))
}

// DeductBatches godoc
// @Summary      Baja con selección de lotes
// @Description  Todas las cantidades se validan contra el saldo vivo de su lote antes de aplicar; si una no alcanza no se aplica nada.
// @Tags         deductions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del producto"
// @Param        body  body  dto.BatchDeductionRequest  true  "Lotes, cantidades y causa"
// @Success      201   {object}  dto.DeductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/deductions/batches [post]
func (h *DeductionHandler) DeductBatches(c *fiber.Ctx) error {
	var in dto.BatchDeductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	draws := make(map[string]decimal.Decimal, len(in.Draws))
	for _, d := range in.Draws {
		if d.BatchID == "" {
			return badRequest(c, "VALIDATION", "batch_id es requerido en cada lote")
		}
		// Un lote repetido acumula sus cantidades.
		draws[d.BatchID] = draws[d.BatchID].Add(d.Quantity)
	}
	r, err := h.uc.DeductBatches(c.UserContext(), inventory.DeductionRequest{
		ProductID: c.Params("id"),
		Draws:     draws,
		Reason:    in.Reason,
		Document:  in.Document,
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDeductionResponse(r))
}

func toDeductionResponse(r *inventory.DeductionResult) dto.DeductionResponse {
	lines := make([]dto.DeductionLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, dto.DeductionLineResponse{
			BatchID:     l.BatchID,
			BatchNumber: l.BatchNumber,
			OperationID: l.OperationID,
			Quantity:    l.Quantity,
			Remaining:   l.Remaining,
			Depleted:    l.Depleted,
		})
	}
	return dto.DeductionResponse{
		ProductID:  r.ProductID,
		TotalDrawn: r.TotalDrawn,
		StockLevel: r.StockLevel,
		Lines:      lines,
	}
}
