package repository

import "time"

// Page paginación por límite/offset.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica límites por defecto (20) y máximo (100).
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Sort campo y dirección de ordenamiento. Field es un nombre lógico validado por cada repositorio.
type Sort struct {
	Field string
	Desc  bool
}

// ProductFilter filtro de listado de productos (texto sobre código y nombre).
type ProductFilter struct {
	Query string
}

// BatchFilter filtro de listado de lotes. Los rangos de fecha son inclusivos; nil = sin límite.
type BatchFilter struct {
	Query          string // número de lote o nombre de producto
	ProductID      string
	Status         string // drafted | received | depleted
	ProductionFrom *time.Time
	ProductionTo   *time.Time
	ReceptionFrom  *time.Time
	ReceptionTo    *time.Time
	ExpirationFrom *time.Time
	ExpirationTo   *time.Time
}

// OperationFilter filtro del diario de operaciones.
type OperationFilter struct {
	Query     string // número de lote o nombre de producto
	ProductID string
	BatchID   string
	Type      string
	From      *time.Time
	To        *time.Time
}

// StockFilter filtro de niveles de stock (texto sobre código y nombre del producto).
type StockFilter struct {
	Query string
}
