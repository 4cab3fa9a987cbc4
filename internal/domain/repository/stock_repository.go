package repository

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
)

// StockRepository define el puerto del stock agregado por producto.
// Get y GetForUpdate devuelven un nivel en cero (no nil) si la fila aún no existe.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*entity.StockLevel, error)
	GetForUpdate(ctx context.Context, productID string) (*entity.StockLevel, error)
	Upsert(ctx context.Context, level *entity.StockLevel) error
	List(ctx context.Context, filter StockFilter, sort Sort, page Page) ([]*entity.StockLevel, error)
}
