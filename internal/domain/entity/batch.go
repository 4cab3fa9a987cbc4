package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote.
const (
	BatchStatusDrafted  = "drafted"  // registrado, pendiente de recepción
	BatchStatusReceived = "received" // recibido con saldo vivo
	BatchStatusDepleted = "depleted" // recibido y agotado
)

// Batch representa un lote de producción de un producto.
// ExpirationDate se calcula al crear: ProductionDate + vida útil.
type Batch struct {
	ID             string
	Seq            int64 // orden de creación, desempate FEFO
	ProductID      string
	BatchNumber    string
	Quantity       decimal.Decimal // cantidad declarada en producción
	ProductionDate time.Time
	ExpirationDate time.Time
	ReceivedAt     *time.Time // nil mientras está en borrador
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Solo lectura (JOIN); no se persisten desde la entidad.
	ProductName string
	HasBalance  bool
}

// IsReceived indica si el lote ya fue recibido en bodega.
func (b *Batch) IsReceived() bool {
	return b.ReceivedAt != nil
}

// Status deriva el estado a partir de la fecha de recepción y la existencia de saldo vivo.
func (b *Batch) Status() string {
	switch {
	case b.ReceivedAt == nil:
		return BatchStatusDrafted
	case b.HasBalance:
		return BatchStatusReceived
	default:
		return BatchStatusDepleted
	}
}
