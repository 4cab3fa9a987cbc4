package inventory

import (
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/shopspring/decimal"
)

// QuantityScale decimales que admite una cantidad. Coincide con las columnas NUMERIC(18,3):
// una cantidad con más decimales se redondearía por columna y el diario dejaría de cuadrar con los saldos.
const QuantityScale = 3

// maxQuantity primer valor que ya no cabe en NUMERIC(18,3).
var maxQuantity = decimal.New(1, 18-QuantityScale)

// CheckQuantity exige una cantidad positiva, representable con QuantityScale decimales y dentro del rango de la columna.
func CheckQuantity(q decimal.Decimal) error {
	if !q.IsPositive() || !q.Equal(q.Truncate(QuantityScale)) || q.GreaterThanOrEqual(maxQuantity) {
		return domain.ErrInvalidQuantity
	}
	return nil
}
