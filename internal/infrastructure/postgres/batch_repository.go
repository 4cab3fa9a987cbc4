package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchSelect = `
	SELECT b.id, b.seq, b.product_id, b.batch_number, b.quantity, b.production_date, b.expiration_date,
		b.received_at, b.created_at, b.updated_at, p.name, (lb.batch_id IS NOT NULL)
	FROM batches b
	JOIN products p ON p.id = b.product_id
	LEFT JOIN live_balances lb ON lb.batch_id = b.id`

var batchSortColumns = map[string]string{
	"production_date": "b.production_date",
	"expiration_date": "b.expiration_date",
	"reception_date":  "b.received_at",
	"batch_number":    "b.batch_number",
	"quantity":        "b.quantity",
	"created":         "b.seq",
}

// BatchRepo implementación de BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.Seq, &b.ProductID, &b.BatchNumber, &b.Quantity, &b.ProductionDate, &b.ExpirationDate,
		&b.ReceivedAt, &b.CreatedAt, &b.UpdatedAt, &b.ProductName, &b.HasBalance)
	if err != nil {
		return nil, err
	}
	b.ProductionDate = b.ProductionDate.UTC()
	b.ExpirationDate = b.ExpirationDate.UTC()
	return &b, nil
}

// Create persiste el lote; seq lo asigna la secuencia de la tabla.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO batches (id, product_id, batch_number, quantity, production_date, expiration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		batch.ID, batch.ProductID, batch.BatchNumber, batch.Quantity,
		batch.ProductionDate, batch.ExpirationDate, batch.CreatedAt, batch.UpdatedAt,
	).Scan(&batch.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownProduct
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) getOne(ctx context.Context, query, id string) (*entity.Batch, error) {
	if !isUUID(id) {
		return nil, nil
	}
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, batchSelect+` WHERE b.id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea solo su fila.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, batchSelect+` WHERE b.id = $1 FOR UPDATE OF b`, id)
}

// UpdateDraft actualiza un lote que aún no se ha recibido.
func (r *BatchRepo) UpdateDraft(ctx context.Context, batch *entity.Batch) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE batches
		SET product_id = $2, batch_number = $3, quantity = $4, production_date = $5, expiration_date = $6, updated_at = $7
		WHERE id = $1 AND received_at IS NULL`,
		batch.ID, batch.ProductID, batch.BatchNumber, batch.Quantity,
		batch.ProductionDate, batch.ExpirationDate, batch.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownProduct
		}
		return fmt.Errorf("update batch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyReceived
	}
	return nil
}

// MarkReceived fija la fecha de recepción.
func (r *BatchRepo) MarkReceived(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE batches SET received_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark batch received: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUnknownBatch
	}
	return nil
}

// List lista lotes con filtros de texto, estado y rangos de fechas.
func (r *BatchRepo) List(ctx context.Context, f repository.BatchFilter, s repository.Sort, page repository.Page) ([]*entity.Batch, error) {
	var w whereBuilder
	w.addLike(f.Query, "b.batch_number", "p.name")
	if f.ProductID != "" {
		if !isUUID(f.ProductID) {
			return []*entity.Batch{}, nil
		}
		w.add("b.product_id = ?", f.ProductID)
	}
	switch f.Status {
	case entity.BatchStatusDrafted:
		w.conds = append(w.conds, "b.received_at IS NULL")
	case entity.BatchStatusReceived:
		w.conds = append(w.conds, "lb.batch_id IS NOT NULL")
	case entity.BatchStatusDepleted:
		w.conds = append(w.conds, "b.received_at IS NOT NULL AND lb.batch_id IS NULL")
	}
	addRange(&w, "b.production_date", f.ProductionFrom, f.ProductionTo)
	addRange(&w, "b.expiration_date", f.ExpirationFrom, f.ExpirationTo)
	addRange(&w, "b.received_at", f.ReceptionFrom, f.ReceptionTo)

	order := orderBy(s, batchSortColumns, "b.production_date", "b.seq")
	if s.Field == "reception_date" {
		// Los borradores (sin recepción) siempre al final.
		order = " ORDER BY b.received_at" + direction(s) + " NULLS LAST, b.seq" + direction(s)
	}
	query := batchSelect + w.sql() + order + w.page(page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Delete elimina el lote. operations.batch_id es ON DELETE SET NULL; live_balances es RESTRICT.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferencedEntity
		}
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

func addRange(w *whereBuilder, col string, from, to *time.Time) {
	if from != nil {
		w.add(col+" >= ?", *from)
	}
	if to != nil {
		w.add(col+" <= ?", *to)
	}
}
