package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LiveBalance es el saldo restante de un lote recibido y no agotado.
// Se crea al recibir el lote y se elimina cuando el saldo llega exactamente a cero.
type LiveBalance struct {
	BatchID   string
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time

	// Datos del lote (JOIN) usados para el orden FEFO y la UI de bajas.
	BatchNumber    string
	BatchSeq       int64
	ExpirationDate time.Time
	Declared       decimal.Decimal
}
