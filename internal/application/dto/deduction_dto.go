package dto

import "github.com/shopspring/decimal"

// BatchDrawRequest cantidad a dar de baja de un lote.
type BatchDrawRequest struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BatchDeductionRequest baja con selección explícita de lotes.
type BatchDeductionRequest struct {
	Draws    []BatchDrawRequest `json:"draws"`
	Reason   string             `json:"reason"`
	Document string             `json:"document"`
	Note     string             `json:"note"`
}

// AutoDeductionRequest baja de una cantidad total repartida en orden FEFO.
type AutoDeductionRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
	Document string          `json:"document"`
	Note     string          `json:"note"`
}

// DeductionLineResponse detalle por lote.
type DeductionLineResponse struct {
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	OperationID string          `json:"operation_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Remaining   decimal.Decimal `json:"remaining"`
	Depleted    bool            `json:"depleted"`
}

// DeductionResponse resultado de una baja.
type DeductionResponse struct {
	ProductID  string                  `json:"product_id"`
	TotalDrawn decimal.Decimal         `json:"total_drawn"`
	StockLevel decimal.Decimal         `json:"stock_level"`
	Lines      []DeductionLineResponse `json:"lines"`
}

// InsufficientBalanceDetails detalle del lote que no alcanza (409).
type InsufficientBalanceDetails struct {
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Available   decimal.Decimal `json:"available"`
	Requested   decimal.Decimal `json:"requested"`
}
