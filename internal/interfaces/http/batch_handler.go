package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

// BatchHandler maneja el ciclo de vida de los lotes.
type BatchHandler struct {
	ledger *inventory.BatchLedgerUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(ledger *inventory.BatchLedgerUseCase) *BatchHandler {
	return &BatchHandler{ledger: ledger}
}

// draftInput lee el body; los errores envuelven ErrInvalidInput (400).
func draftInput(c *fiber.Ctx) (inventory.DraftBatchInput, error) {
	var in dto.DraftBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return inventory.DraftBatchInput{}, fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	production, err := parseDate(in.ProductionDate)
	if err != nil {
		return inventory.DraftBatchInput{}, fmt.Errorf("%w: production_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return inventory.DraftBatchInput{
		ProductID:      in.ProductID,
		BatchNumber:    in.BatchNumber,
		Quantity:       in.Quantity,
		ProductionDate: production,
		ShelfLifeDays:  in.ShelfLifeDays,
	}, nil
}

// Create godoc
// @Summary      Registrar lote (borrador)
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DraftBatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	in, err := draftInput(c)
	if err != nil {
		return writeError(c, err)
	}
	b, err := h.ledger.DraftBatch(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBatchResponse(b))
}

// Update godoc
// @Summary      Editar lote en borrador
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del lote"
// @Param        body  body  dto.DraftBatchRequest  true  "Datos del lote"
// @Success      200   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [put]
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	in, err := draftInput(c)
	if err != nil {
		return writeError(c, err)
	}
	b, err := h.ledger.UpdateDraftBatch(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBatchResponse(b))
}

// Receive godoc
// @Summary      Recibir lote en bodega
// @Description  Idempotente: si el lote ya fue recibido responde 200 con already_received=true sin efectos.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "ID del lote"
// @Param        body  body  dto.ReceiveBatchRequest  false  "Nota opcional"
// @Success      200   {object}  dto.ReceiveBatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/receive [post]
func (h *BatchHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	r, err := h.ledger.ReceiveBatch(c.UserContext(), c.Params("id"), in.Note, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReceiveBatchResponse{
		Batch:           dto.ToBatchResponse(r.Batch),
		AlreadyReceived: r.AlreadyReceived,
		ReceivedAt:      r.ReceivedAt,
		Message:         r.Message,
	}
	if !r.AlreadyReceived {
		level := r.StockLevel
		op := dto.ToOperationResponse(r.Operation)
		out.StockLevel = &level
		out.Operation = &op
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	b, err := h.ledger.GetBatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBatchResponse(b))
}

// List godoc
// @Summary      Listar lotes
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        q                query  string  false  "Número de lote o producto"
// @Param        product_id       query  string  false  "Producto"
// @Param        status           query  string  false  "drafted|received|depleted"
// @Param        production_from  query  string  false  "YYYY-MM-DD"
// @Param        production_to    query  string  false  "YYYY-MM-DD"
// @Param        reception_from   query  string  false  "YYYY-MM-DD"
// @Param        reception_to     query  string  false  "YYYY-MM-DD"
// @Param        expiration_from  query  string  false  "YYYY-MM-DD"
// @Param        expiration_to    query  string  false  "YYYY-MM-DD"
// @Param        sort             query  string  false  "production_date|expiration_date|reception_date|batch_number|quantity|created"
// @Success      200  {object}  dto.BatchListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	f := repository.BatchFilter{
		Query:     c.Query("q"),
		ProductID: c.Query("product_id"),
		Status:    c.Query("status"),
	}
	switch f.Status {
	case "", entity.BatchStatusDrafted, entity.BatchStatusReceived, entity.BatchStatusDepleted:
	default:
		return badRequest(c, "VALIDATION", "status debe ser drafted, received o depleted")
	}
	var err error
	if f.ProductionFrom, err = dateQuery(c, "production_from", false); err != nil {
		return writeError(c, err)
	}
	if f.ProductionTo, err = dateQuery(c, "production_to", false); err != nil {
		return writeError(c, err)
	}
	if f.ExpirationFrom, err = dateQuery(c, "expiration_from", false); err != nil {
		return writeError(c, err)
	}
	if f.ExpirationTo, err = dateQuery(c, "expiration_to", false); err != nil {
		return writeError(c, err)
	}
	if f.ReceptionFrom, err = dateQuery(c, "reception_from", false); err != nil {
		return writeError(c, err)
	}
	if f.ReceptionTo, err = dateQuery(c, "reception_to", true); err != nil {
		return writeError(c, err)
	}

	page := pageFromQuery(c)
	list, err := h.ledger.ListBatches(c.UserContext(), f, sortFromQuery(c), page)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, dto.ToBatchResponse(b))
	}
	return c.JSON(dto.BatchListResponse{Items: items, Page: pageResponse(page, len(items))})
}

// Delete godoc
// @Summary      Eliminar lote sin saldo vivo
// @Tags         batches
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.ledger.DeleteBatch(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
