package dto

import (
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OperationResponse entrada del diario.
type OperationResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	TypeLabel   string          `json:"type_label"`
	BatchID     *string         `json:"batch_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Reason      string          `json:"reason,omitempty"`
	Document    string          `json:"document,omitempty"`
	Note        string          `json:"note,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// OperationListResponse lista paginada del diario.
type OperationListResponse struct {
	Items []OperationResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// OperationExportResponse fila de exportación del diario en JSON.
type OperationExportResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	TypeLabel   string          `json:"type_label"`
	BatchNumber string          `json:"batch_number"`
	ProductName string          `json:"product_name"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
	Document    string          `json:"document"`
	Note        string          `json:"note"`
}

// StockExportResponse fila de exportación de stock en JSON.
type StockExportResponse struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ToOperationResponse mapea la entidad.
func ToOperationResponse(op *entity.OperationRecord) OperationResponse {
	return OperationResponse{
		ID:          op.ID,
		Type:        op.Type,
		TypeLabel:   entity.OperationTypeLabel(op.Type),
		BatchID:     op.BatchID,
		BatchNumber: op.BatchNumber,
		ProductID:   op.ProductID,
		ProductName: op.ProductName,
		Quantity:    op.Quantity,
		OccurredAt:  op.OccurredAt,
		Reason:      op.Reason,
		Document:    op.Document,
		Note:        op.Note,
		CreatedBy:   op.CreatedBy,
	}
}
