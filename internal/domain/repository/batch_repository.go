package repository

import (
	"context"
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes.
type BatchRepository interface {
	// Create persiste el lote y asigna Seq (orden de creación).
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	// UpdateDraft actualiza los datos de un lote aún no recibido.
	UpdateDraft(ctx context.Context, batch *entity.Batch) error
	MarkReceived(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter BatchFilter, sort Sort, page Page) ([]*entity.Batch, error)
	// Delete elimina el lote; las operaciones que lo referencian quedan con batch_id nulo.
	Delete(ctx context.Context, id string) error
}
