package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, name, unit, shelf_life_days, created_at`

var productSortColumns = map[string]string{
	"code":            "code",
	"name":            "name",
	"unit":            "unit",
	"shelf_life_days": "shelf_life_days",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Unit, &p.ShelfLifeDays, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.Code, product.Name, product.Unit, product.ShelfLifeDays, product.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// List lista productos con búsqueda sobre código y nombre.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter, s repository.Sort, page repository.Page) ([]*entity.Product, error) {
	var w whereBuilder
	w.addLike(filter.Query, "code", "name")
	query := `SELECT ` + productColumns + ` FROM products` + w.sql() +
		orderBy(s, productSortColumns, "code", "id") + w.page(page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountReferences cuenta lotes, operaciones y filas de stock del producto.
func (r *ProductRepo) CountReferences(ctx context.Context, id string) (int, error) {
	if !isUUID(id) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM batches WHERE product_id = $1) +
			(SELECT COUNT(*) FROM operations WHERE product_id = $1) +
			(SELECT COUNT(*) FROM stock_levels WHERE product_id = $1)`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count product references: %w", err)
	}
	return n, nil
}

// Delete elimina un producto por ID. La FK RESTRICT es el último respaldo.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferencedEntity
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
