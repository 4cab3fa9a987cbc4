package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	a access
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicateCode
		}
		for _, p := range st.products {
			if p.Code == product.Code {
				return domain.ErrDuplicateCode
			}
		}
		st.ownProducts()[product.ID] = *product
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if p.Code == code {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: el lock de escritura de Run ya serializa.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter, s repository.Sort, page repository.Page) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if !matchesAny(filter.Query, p.Code, p.Name) {
				continue
			}
			list = append(list, &p)
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
			cmp = compareStrings(a.Name, b.Name)
		case "unit":
			cmp = compareStrings(a.Unit, b.Unit)
		case "shelf_life_days":
			cmp = a.ShelfLifeDays - b.ShelfLifeDays
		default:
			cmp = compareStrings(a.Code, b.Code)
		}
		if cmp == 0 {
			cmp = compareStrings(a.Code, b.Code)
		}
		return ordered(cmp, s.Desc) < 0
	})
	return paginate(list, page), nil
}

func (r *ProductRepo) CountReferences(_ context.Context, id string) (int, error) {
	n := 0
	err := r.a.read(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == id {
				n++
			}
		}
		for _, op := range st.operations {
			if op.ProductID == id {
				n++
			}
		}
		if _, ok := st.stock[id]; ok {
			n++
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.a.write(func(st *state) error {
		delete(st.ownProducts(), id)
		return nil
	})
}
