package repository

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
)

// OperationRepository diario de operaciones: solo inserción y lectura, nunca actualiza ni borra.
type OperationRepository interface {
	// Append persiste la operación y asigna Seq.
	Append(ctx context.Context, op *entity.OperationRecord) error
	GetByID(ctx context.Context, id string) (*entity.OperationRecord, error)
	// List ordena por fecha de operación descendente si sort.Field está vacío.
	List(ctx context.Context, filter OperationFilter, sort Sort, page Page) ([]*entity.OperationRecord, error)
}
