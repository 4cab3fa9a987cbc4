package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo stock agregado en memoria.
type StockRepo struct {
	a access
}

func stockWithJoins(st *state, l entity.StockLevel) *entity.StockLevel {
	if p, ok := st.products[l.ProductID]; ok {
		l.ProductCode = p.Code
		l.ProductName = p.Name
		l.Unit = p.Unit
	}
	return &l
}

func (r *StockRepo) Get(_ context.Context, productID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.a.read(func(st *state) error {
		l, ok := st.stock[productID]
		if !ok {
			l = entity.StockLevel{ProductID: productID, Quantity: decimal.Zero}
		}
		out = stockWithJoins(st, l)
		return nil
	})
	return out, err
}

func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID)
}

func (r *StockRepo) Upsert(_ context.Context, level *entity.StockLevel) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[level.ProductID]; !ok {
			return domain.ErrUnknownProduct
		}
		st.ownStock()[level.ProductID] = entity.StockLevel{
			ProductID: level.ProductID,
			Quantity:  level.Quantity,
			UpdatedAt: level.UpdatedAt,
		}
		return nil
	})
}

func (r *StockRepo) List(_ context.Context, filter repository.StockFilter, s repository.Sort, page repository.Page) ([]*entity.StockLevel, error) {
	var list []*entity.StockLevel
	err := r.a.read(func(st *state) error {
		for _, raw := range st.stock {
			l := stockWithJoins(st, raw)
			if !matchesAny(filter.Query, l.ProductCode, l.ProductName) {
				continue
			}
			list = append(list, l)
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
		case "name":
			cmp = compareStrings(a.ProductName, b.ProductName)
		case "quantity":
			cmp = a.Quantity.Cmp(b.Quantity)
		default:
			cmp = compareStrings(a.ProductCode, b.ProductCode)
		}
		if cmp == 0 {
			cmp = compareStrings(a.ProductID, b.ProductID)
		}
		return ordered(cmp, s.Desc) < 0
	})
	return paginate(list, page), nil
}
