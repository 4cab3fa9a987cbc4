package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa el stock agregado de un producto.
// Quantity siempre es igual a la suma de los saldos vivos de sus lotes.
type StockLevel struct {
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time

	// Solo lectura (JOIN con products).
	ProductCode string
	ProductName string
	Unit        string
}
