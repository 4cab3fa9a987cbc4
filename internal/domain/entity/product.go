package entity

import "time"

// Product representa una entrada del catálogo (nomenclatura).
// Es inmutable en la práctica: una vez referenciado por un lote, operación o stock no puede eliminarse.
type Product struct {
	ID            string
	Code          string // código único de producto
	Name          string
	Unit          string // unidad de medida (kg, unidades, l...)
	ShelfLifeDays int    // vida útil estándar en días
	CreatedAt     time.Time
}
