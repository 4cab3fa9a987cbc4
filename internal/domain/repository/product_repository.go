package repository

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
)

// ProductReader lectura de productos por ID (lo implementan el repositorio y la caché).
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// ProductRepository define el puerto de persistencia para el catálogo.
// GetByID y GetByCode devuelven (nil, nil) si no existe.
type ProductRepository interface {
	ProductReader
	Create(ctx context.Context, product *entity.Product) error
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE): serializa las mutaciones de su inventario.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter, sort Sort, page Page) ([]*entity.Product, error)
	// CountReferences cuenta lotes, operaciones y filas de stock que apuntan al producto.
	CountReferences(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}
