package dto

import (
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLevelResponse stock agregado de un producto.
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// StockListResponse lista paginada de niveles de stock.
type StockListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ConsistencyResponse resultado de la verificación stock = Σ saldos vivos.
type ConsistencyResponse struct {
	ProductID   string          `json:"product_id"`
	StockLevel  decimal.Decimal `json:"stock_level"`
	LiveTotal   decimal.Decimal `json:"live_total"`
	LiveBatches int             `json:"live_batches"`
	Consistent  bool            `json:"consistent"`
}

// ToStockLevelResponse mapea la entidad.
func ToStockLevelResponse(l *entity.StockLevel) StockLevelResponse {
	out := StockLevelResponse{
		ProductID:   l.ProductID,
		ProductCode: l.ProductCode,
		ProductName: l.ProductName,
		Unit:        l.Unit,
		Quantity:    l.Quantity,
	}
	if !l.UpdatedAt.IsZero() {
		t := l.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
