package inventory

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products   repository.ProductRepository
	Batches    repository.BatchRepository
	Balances   repository.LiveBalanceRepository
	Stock      repository.StockRepository
	Operations repository.OperationRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no se aplica ningún cambio (Rollback). Garantiza atomicidad del libro de inventario.
//
// RunReadOnly da a fn una vista consistente (snapshot) del libro: las escrituras que confirmen
// otras transacciones mientras fn corre no son visibles. fn no debe escribir.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
	RunReadOnly(ctx context.Context, fn func(repos Repos) error) error
}
