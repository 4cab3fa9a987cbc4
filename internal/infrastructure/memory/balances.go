package memory

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.LiveBalanceRepository = (*LiveBalanceRepo)(nil)

// LiveBalanceRepo saldos vivos en memoria.
type LiveBalanceRepo struct {
	a access
}

func balanceWithJoins(st *state, lb entity.LiveBalance) *entity.LiveBalance {
	if b, ok := st.batches[lb.BatchID]; ok {
		lb.BatchNumber = b.BatchNumber
		lb.BatchSeq = b.Seq
		lb.ExpirationDate = b.ExpirationDate
		lb.Declared = b.Quantity
	}
	return &lb
}

func (r *LiveBalanceRepo) Create(_ context.Context, balance *entity.LiveBalance) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.batches[balance.BatchID]; !ok {
			return domain.ErrUnknownBatch
		}
		if _, ok := st.balances[balance.BatchID]; ok {
			return domain.ErrAlreadyReceived
		}
		st.ownBalances()[balance.BatchID] = *balance
		return nil
	})
}

func (r *LiveBalanceRepo) GetByBatch(_ context.Context, batchID string) (*entity.LiveBalance, error) {
	var out *entity.LiveBalance
	err := r.a.read(func(st *state) error {
		if lb, ok := st.balances[batchID]; ok {
			out = balanceWithJoins(st, lb)
		}
		return nil
	})
	return out, err
}

func (r *LiveBalanceRepo) ListByProduct(_ context.Context, productID string) ([]*entity.LiveBalance, error) {
	list := make([]*entity.LiveBalance, 0)
	err := r.a.read(func(st *state) error {
		for _, lb := range st.balances {
			if lb.ProductID == productID {
				list = append(list, balanceWithJoins(st, lb))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(list)
	return list, nil
}

// ListByProductForUpdate equivale a ListByProduct: Run ya tiene el lock de escritura.
func (r *LiveBalanceRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.LiveBalance, error) {
	return r.ListByProduct(ctx, productID)
}

func (r *LiveBalanceRepo) Update(_ context.Context, balance *entity.LiveBalance) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.balances[balance.BatchID]
		if !ok {
			return domain.ErrUnknownBatch
		}
		cur.Quantity = balance.Quantity
		cur.UpdatedAt = balance.UpdatedAt
		st.ownBalances()[balance.BatchID] = cur
		return nil
	})
}

func (r *LiveBalanceRepo) Delete(_ context.Context, batchID string) error {
	return r.a.write(func(st *state) error {
		delete(st.ownBalances(), batchID)
		return nil
	})
}
