package dto

import (
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DraftBatchRequest body para registrar o editar un lote en borrador.
// ProductionDate en formato YYYY-MM-DD. ShelfLifeDays opcional reemplaza la vida útil del producto.
type DraftBatchRequest struct {
	ProductID      string          `json:"product_id"`
	BatchNumber    string          `json:"batch_number"`
	Quantity       decimal.Decimal `json:"quantity"`
	ProductionDate string          `json:"production_date"`
	ShelfLifeDays  *int            `json:"shelf_life_days,omitempty"`
}

// ReceiveBatchRequest body opcional de la recepción.
type ReceiveBatchRequest struct {
	Note string `json:"note"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	BatchNumber    string          `json:"batch_number"`
	Quantity       decimal.Decimal `json:"quantity"`
	ProductionDate string          `json:"production_date"`
	ExpirationDate string          `json:"expiration_date"`
	ReceivedAt     *time.Time      `json:"received_at"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BatchListResponse lista paginada de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ReceiveBatchResponse resultado de la recepción.
type ReceiveBatchResponse struct {
	Batch           BatchResponse      `json:"batch"`
	AlreadyReceived bool               `json:"already_received"`
	ReceivedAt      time.Time          `json:"received_at"`
	StockLevel      *decimal.Decimal   `json:"stock_level,omitempty"`
	Operation       *OperationResponse `json:"operation,omitempty"`
	Message         string             `json:"message"`
}

// LiveBatchResponse saldo vivo de un lote (vista de bajas).
type LiveBatchResponse struct {
	BatchID        string          `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	ExpirationDate string          `json:"expiration_date"`
	Declared       decimal.Decimal `json:"declared"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// ToBatchResponse mapea la entidad.
func ToBatchResponse(b *entity.Batch) BatchResponse {
	return BatchResponse{
		ID:             b.ID,
		ProductID:      b.ProductID,
		ProductName:    b.ProductName,
		BatchNumber:    b.BatchNumber,
		Quantity:       b.Quantity,
		ProductionDate: b.ProductionDate.Format(DateLayout),
		ExpirationDate: b.ExpirationDate.Format(DateLayout),
		ReceivedAt:     b.ReceivedAt,
		Status:         b.Status(),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ToLiveBatchResponse mapea un saldo vivo.
func ToLiveBatchResponse(lb *entity.LiveBalance) LiveBatchResponse {
	return LiveBatchResponse{
		BatchID:        lb.BatchID,
		BatchNumber:    lb.BatchNumber,
		ExpirationDate: lb.ExpirationDate.Format(DateLayout),
		Declared:       lb.Declared,
		Quantity:       lb.Quantity,
	}
}
