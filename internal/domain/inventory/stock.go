package inventory

import (
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ApplyStockDelta suma delta (positivo o negativo) al stock agregado.
// Respaldo de consistencia: rechaza con ErrNegativeStock cualquier cambio que lo deje negativo
// y no modifica el nivel en ese caso.
func ApplyStockDelta(level *entity.StockLevel, delta decimal.Decimal, now time.Time) error {
	next := level.Quantity.Add(delta)
	if next.IsNegative() {
		return domain.ErrNegativeStock
	}
	level.Quantity = next
	level.UpdatedAt = now
	return nil
}

// SumBalances suma los saldos vivos.
func SumBalances(balances []*entity.LiveBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Quantity)
	}
	return total
}
