package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

var stockSortColumns = map[string]string{
	"code":     "p.code",
	"name":     "p.name",
	"quantity": "s.quantity",
}

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) get(ctx context.Context, productID string, forUpdate bool) (*entity.StockLevel, error) {
	if !isUUID(productID) {
		return &entity.StockLevel{ProductID: productID, Quantity: decimal.Zero}, nil
	}
	query := `
		SELECT s.product_id, s.quantity, s.updated_at, p.code, p.name, p.unit
		FROM stock_levels s JOIN products p ON p.id = s.product_id
		WHERE s.product_id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF s`
	}
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&s.ProductID, &s.Quantity, &s.UpdatedAt, &s.ProductCode, &s.ProductName, &s.Unit,
	)
	if err != nil {
		if isNoRow(err) {
			return &entity.StockLevel{ProductID: productID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Get obtiene el stock actual de un producto (cero si no hay fila).
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockLevel, error) {
	return r.get(ctx, productID, false)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockLevel, error) {
	return r.get(ctx, productID, true)
}

// Upsert inserta o actualiza la cantidad en stock del producto.
func (r *StockRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (product_id, quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		level.ProductID, level.Quantity, level.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownProduct
		}
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// List niveles de stock con datos del producto.
func (r *StockRepo) List(ctx context.Context, filter repository.StockFilter, s repository.Sort, page repository.Page) ([]*entity.StockLevel, error) {
	var w whereBuilder
	w.addLike(filter.Query, "p.code", "p.name")
	query := `
		SELECT s.product_id, s.quantity, s.updated_at, p.code, p.name, p.unit
		FROM stock_levels s JOIN products p ON p.id = s.product_id` +
		w.sql() + orderBy(s, stockSortColumns, "p.code", "s.product_id") + w.page(page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockLevel, 0)
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.UpdatedAt, &l.ProductCode, &l.ProductName, &l.Unit); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
