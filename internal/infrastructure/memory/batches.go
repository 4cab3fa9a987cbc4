package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes en memoria.
type BatchRepo struct {
	a access
}

// withJoins completa los campos de solo lectura del lote.
func withJoins(st *state, b entity.Batch) *entity.Batch {
	if p, ok := st.products[b.ProductID]; ok {
		b.ProductName = p.Name
	}
	_, b.HasBalance = st.balances[b.ID]
	return &b
}

func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[batch.ProductID]; !ok {
			return domain.ErrUnknownProduct
		}
		st.batchSeq++
		batch.Seq = st.batchSeq
		st.ownBatches()[batch.ID] = *batch
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.a.read(func(st *state) error {
		if b, ok := st.batches[id]; ok {
			out = withJoins(st, b)
		}
		return nil
	})
	return out, err
}

func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) UpdateDraft(_ context.Context, batch *entity.Batch) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.batches[batch.ID]
		if !ok {
			return domain.ErrUnknownBatch
		}
		if cur.ReceivedAt != nil {
			return domain.ErrAlreadyReceived
		}
		cur.ProductID = batch.ProductID
		cur.BatchNumber = batch.BatchNumber
		cur.Quantity = batch.Quantity
		cur.ProductionDate = batch.ProductionDate
		cur.ExpirationDate = batch.ExpirationDate
		cur.UpdatedAt = batch.UpdatedAt
		st.ownBatches()[batch.ID] = cur
		return nil
	})
}

func (r *BatchRepo) MarkReceived(_ context.Context, id string, at time.Time) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.batches[id]
		if !ok {
			return domain.ErrUnknownBatch
		}
		cur.ReceivedAt = &at
		cur.UpdatedAt = at
		st.ownBatches()[id] = cur
		return nil
	})
}

func (r *BatchRepo) List(_ context.Context, f repository.BatchFilter, s repository.Sort, page repository.Page) ([]*entity.Batch, error) {
	var list []*entity.Batch
	err := r.a.read(func(st *state) error {
		for _, raw := range st.batches {
			b := withJoins(st, raw)
			if f.ProductID != "" && b.ProductID != f.ProductID {
				continue
			}
			if f.Status != "" && b.Status() != f.Status {
				continue
			}
			if !matchesAny(f.Query, b.BatchNumber, b.ProductName) {
				continue
			}
			if !inRange(b.ProductionDate, f.ProductionFrom, f.ProductionTo) ||
				!inRange(b.ExpirationDate, f.ExpirationFrom, f.ExpirationTo) {
				continue
			}
			if f.ReceptionFrom != nil || f.ReceptionTo != nil {
				if b.ReceivedAt == nil || !inRange(*b.ReceivedAt, f.ReceptionFrom, f.ReceptionTo) {
					continue
				}
			}
			list = append(list, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var cmp int
		switch s.Field {
		case "expiration_date":
			cmp = compareTimes(a.ExpirationDate, b.ExpirationDate)
		case "reception_date":
			cmp = compareReception(a.ReceivedAt, b.ReceivedAt)
		case "batch_number":
			cmp = compareStrings(a.BatchNumber, b.BatchNumber)
		case "quantity":
			cmp = a.Quantity.Cmp(b.Quantity)
		case "created":
			cmp = 0
		default:
			cmp = compareTimes(a.ProductionDate, b.ProductionDate)
		}
		if cmp == 0 {
			cmp = int(a.Seq - b.Seq)
		}
		return ordered(cmp, s.Desc) < 0
	})
	return paginate(list, page), nil
}

// compareReception ordena los lotes sin recibir al final (como NULLS LAST en ascendente).
func compareReception(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return compareTimes(*a, *b)
	}
}

func (r *BatchRepo) Delete(_ context.Context, id string) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.balances[id]; ok {
			return domain.ErrReferencedEntity
		}
		delete(st.ownBatches(), id)
		// Las operaciones se conservan sin referencia al lote.
		st.detachBatch(id)
		return nil
	})
}
