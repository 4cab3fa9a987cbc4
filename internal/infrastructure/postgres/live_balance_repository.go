package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.LiveBalanceRepository = (*LiveBalanceRepo)(nil)

const balanceSelect = `
	SELECT lb.batch_id, lb.product_id, lb.quantity, lb.updated_at,
		b.batch_number, b.seq, b.expiration_date, b.quantity
	FROM live_balances lb
	JOIN batches b ON b.id = lb.batch_id`

// LiveBalanceRepo saldos vivos por lote sobre PostgreSQL.
type LiveBalanceRepo struct {
	q Querier
}

// NewLiveBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLiveBalanceRepository(q Querier) *LiveBalanceRepo {
	return &LiveBalanceRepo{q: q}
}

func scanBalance(row pgx.Row) (*entity.LiveBalance, error) {
	var lb entity.LiveBalance
	err := row.Scan(&lb.BatchID, &lb.ProductID, &lb.Quantity, &lb.UpdatedAt,
		&lb.BatchNumber, &lb.BatchSeq, &lb.ExpirationDate, &lb.Declared)
	if err != nil {
		return nil, err
	}
	lb.ExpirationDate = lb.ExpirationDate.UTC()
	return &lb, nil
}

// Create inserta el saldo vivo de un lote recién recibido.
func (r *LiveBalanceRepo) Create(ctx context.Context, balance *entity.LiveBalance) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO live_balances (batch_id, product_id, quantity, updated_at) VALUES ($1, $2, $3, $4)`,
		balance.BatchID, balance.ProductID, balance.Quantity, balance.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyReceived
		case isForeignKeyViolation(err):
			return domain.ErrUnknownBatch
		}
		return fmt.Errorf("insert live balance: %w", err)
	}
	return nil
}

// GetByBatch obtiene el saldo vivo del lote o nil si no tiene.
func (r *LiveBalanceRepo) GetByBatch(ctx context.Context, batchID string) (*entity.LiveBalance, error) {
	if !isUUID(batchID) {
		return nil, nil
	}
	lb, err := scanBalance(r.q.QueryRow(ctx, balanceSelect+` WHERE lb.batch_id = $1`, batchID))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get live balance: %w", err)
	}
	return lb, nil
}

// ListByProduct saldos vivos del producto en orden FEFO, sin bloquear.
func (r *LiveBalanceRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.LiveBalance, error) {
	return r.list(ctx, productID, "")
}

// ListByProductForUpdate igual que ListByProduct pero bloquea las filas (dentro de una tx).
func (r *LiveBalanceRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.LiveBalance, error) {
	return r.list(ctx, productID, " FOR UPDATE OF lb")
}

func (r *LiveBalanceRepo) list(ctx context.Context, productID, lock string) ([]*entity.LiveBalance, error) {
	if !isUUID(productID) {
		return []*entity.LiveBalance{}, nil
	}
	query := balanceSelect + `
		WHERE lb.product_id = $1
		ORDER BY b.expiration_date ASC, b.seq ASC` + lock
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list live balances: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.LiveBalance, 0)
	for rows.Next() {
		lb, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan live balance: %w", err)
		}
		list = append(list, lb)
	}
	return list, rows.Err()
}

// Update guarda la nueva cantidad. El CHECK quantity > 0 de la tabla rechaza un saldo no positivo.
func (r *LiveBalanceRepo) Update(ctx context.Context, balance *entity.LiveBalance) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE live_balances SET quantity = $2, updated_at = $3 WHERE batch_id = $1`,
		balance.BatchID, balance.Quantity, balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update live balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUnknownBatch
	}
	return nil
}

// Delete elimina el saldo vivo (lote agotado).
func (r *LiveBalanceRepo) Delete(ctx context.Context, batchID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM live_balances WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete live balance: %w", err)
	}
	return nil
}
