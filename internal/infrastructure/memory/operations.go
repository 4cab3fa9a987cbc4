package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.OperationRepository = (*OperationRepo)(nil)

// OperationRepo diario de operaciones en memoria (solo inserción).
type OperationRepo struct {
	a access
}

func operationWithJoins(st *state, op entity.OperationRecord) *entity.OperationRecord {
	if op.BatchID != nil {
		if b, ok := st.batches[*op.BatchID]; ok {
			op.BatchNumber = b.BatchNumber
		}
	}
	if p, ok := st.products[op.ProductID]; ok {
		op.ProductName = p.Name
	}
	return &op
}

func (r *OperationRepo) Append(_ context.Context, op *entity.OperationRecord) error {
	if !op.Quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	return r.a.write(func(st *state) error {
		if _, ok := st.products[op.ProductID]; !ok {
			return domain.ErrUnknownProduct
		}
		st.opSeq++
		op.Seq = st.opSeq
		st.operations = append(st.operations, *op)
		return nil
	})
}

func (r *OperationRepo) GetByID(_ context.Context, id string) (*entity.OperationRecord, error) {
	var out *entity.OperationRecord
	err := r.a.read(func(st *state) error {
		for _, op := range st.operations {
			if op.ID == id {
				out = operationWithJoins(st, op)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *OperationRepo) List(_ context.Context, f repository.OperationFilter, s repository.Sort, page repository.Page) ([]*entity.OperationRecord, error) {
	var list []*entity.OperationRecord
	err := r.a.read(func(st *state) error {
		for _, raw := range st.operations {
			op := operationWithJoins(st, raw)
			if f.ProductID != "" && op.ProductID != f.ProductID {
				continue
			}
			if f.BatchID != "" && (op.BatchID == nil || *op.BatchID != f.BatchID) {
				continue
			}
			if f.Type != "" && op.Type != f.Type {
				continue
			}
			if !inRange(op.OccurredAt, f.From, f.To) {
				continue
			}
			if !matchesAny(f.Query, op.BatchNumber, op.ProductName) {
				continue
			}
			list = append(list, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	desc := s.Desc
	if s.Field == "" {
		desc = true
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var cmp int
		switch s.Field {
		case "quantity":
			cmp = a.Quantity.Cmp(b.Quantity)
		case "type":
			cmp = compareStrings(a.Type, b.Type)
		default:
			cmp = compareTimes(a.OccurredAt, b.OccurredAt)
		}
		if cmp == 0 {
			cmp = int(a.Seq - b.Seq)
		}
		return ordered(cmp, desc) < 0
	})
	return paginate(list, page), nil
}
