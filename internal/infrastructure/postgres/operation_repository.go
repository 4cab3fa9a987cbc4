package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.OperationRepository = (*OperationRepo)(nil)

const operationSelect = `
	SELECT o.id, o.seq, o.type, o.batch_id, o.product_id, o.quantity, o.occurred_at,
		o.reason, o.document, o.note, o.created_by, COALESCE(b.batch_number, ''), p.name
	FROM operations o
	JOIN products p ON p.id = o.product_id
	LEFT JOIN batches b ON b.id = o.batch_id`

var operationSortColumns = map[string]string{
	"occurred_at": "o.occurred_at",
	"quantity":    "o.quantity",
	"type":        "o.type",
}

// OperationRepo diario de operaciones sobre PostgreSQL. Solo INSERT y SELECT.
type OperationRepo struct {
	q Querier
}

// NewOperationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOperationRepository(q Querier) *OperationRepo {
	return &OperationRepo{q: q}
}

func scanOperation(row pgx.Row) (*entity.OperationRecord, error) {
	var op entity.OperationRecord
	err := row.Scan(&op.ID, &op.Seq, &op.Type, &op.BatchID, &op.ProductID, &op.Quantity, &op.OccurredAt,
		&op.Reason, &op.Document, &op.Note, &op.CreatedBy, &op.BatchNumber, &op.ProductName)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// Append inserta la operación; seq lo asigna la secuencia.
func (r *OperationRepo) Append(ctx context.Context, op *entity.OperationRecord) error {
	if !op.Quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO operations (id, type, batch_id, product_id, quantity, occurred_at, reason, document, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`,
		op.ID, op.Type, op.BatchID, op.ProductID, op.Quantity, op.OccurredAt,
		op.Reason, op.Document, op.Note, op.CreatedBy,
	).Scan(&op.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownProduct
		}
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// GetByID obtiene una operación por ID.
func (r *OperationRepo) GetByID(ctx context.Context, id string) (*entity.OperationRecord, error) {
	if !isUUID(id) {
		return nil, nil
	}
	op, err := scanOperation(r.q.QueryRow(ctx, operationSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operation: %w", err)
	}
	return op, nil
}

// List lista el diario; sin campo de orden, más recientes primero.
func (r *OperationRepo) List(ctx context.Context, f repository.OperationFilter, s repository.Sort, page repository.Page) ([]*entity.OperationRecord, error) {
	var w whereBuilder
	w.addLike(f.Query, "b.batch_number", "p.name")
	if (f.ProductID != "" && !isUUID(f.ProductID)) || (f.BatchID != "" && !isUUID(f.BatchID)) {
		return []*entity.OperationRecord{}, nil
	}
	if f.ProductID != "" {
		w.add("o.product_id = ?", f.ProductID)
	}
	if f.BatchID != "" {
		w.add("o.batch_id = ?", f.BatchID)
	}
	if f.Type != "" {
		w.add("o.type = ?", f.Type)
	}
	addRange(&w, "o.occurred_at", f.From, f.To)

	if s.Field == "" {
		s = repository.Sort{Field: "occurred_at", Desc: true}
	}
	query := operationSelect + w.sql() + orderBy(s, operationSortColumns, "o.occurred_at", "o.seq") + w.page(page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.OperationRecord, 0)
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		list = append(list, op)
	}
	return list, rows.Err()
}
