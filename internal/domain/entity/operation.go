package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación del diario.
const (
	OperationTypeReceipt   = "receipt"   // recepción de lote
	OperationTypeDeduction = "deduction" // baja de inventario
)

// OperationTypeLabel devuelve la etiqueta visible del tipo de operación.
func OperationTypeLabel(t string) string {
	switch t {
	case OperationTypeReceipt:
		return "Recepción"
	case OperationTypeDeduction:
		return "Baja"
	default:
		return t
	}
}

// OperationRecord es una entrada inmutable del diario de operaciones.
// BatchID queda en nil si el lote se eliminó (la operación se conserva para auditoría).
type OperationRecord struct {
	ID         string
	Seq        int64
	Type       string
	BatchID    *string
	ProductID  string
	Quantity   decimal.Decimal // siempre positiva
	OccurredAt time.Time
	Reason     string // obligatoria en bajas
	Document   string
	Note       string
	CreatedBy  string

	// Solo lectura (JOIN).
	BatchNumber string
	ProductName string
}
