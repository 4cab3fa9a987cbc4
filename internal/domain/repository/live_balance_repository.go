package repository

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
)

// LiveBalanceRepository define el puerto para los saldos vivos por lote.
type LiveBalanceRepository interface {
	Create(ctx context.Context, balance *entity.LiveBalance) error
	GetByBatch(ctx context.Context, batchID string) (*entity.LiveBalance, error)
	// ListByProduct devuelve los saldos vivos del producto en orden FEFO (vencimiento asc, creación asc).
	ListByProduct(ctx context.Context, productID string) ([]*entity.LiveBalance, error)
	// ListByProductForUpdate como ListByProduct, bloqueando las filas hasta el fin de la tx.
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.LiveBalance, error)
	Update(ctx context.Context, balance *entity.LiveBalance) error
	Delete(ctx context.Context, batchID string) error
}
