package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultReceiptNote nota de la operación de recepción cuando el llamador no indica ninguna.
const DefaultReceiptNote = "Recepción de lote"

// BatchLedgerUseCase ciclo de vida de los lotes: borrador → recibido → agotado.
// La recepción es transaccional: operación, stock, saldo vivo y fecha de recepción se aplican juntos o no se aplican.
type BatchLedgerUseCase struct {
	txRunner TxRunner
	batches  repository.BatchRepository
	products repository.ProductReader
	log      *logger.Logger
}

// NewBatchLedgerUseCase construye el caso de uso.
func NewBatchLedgerUseCase(
	txRunner TxRunner,
	batches repository.BatchRepository,
	products repository.ProductReader,
	log *logger.Logger,
) *BatchLedgerUseCase {
	return &BatchLedgerUseCase{txRunner: txRunner, batches: batches, products: products, log: log}
}

// DraftBatchInput entrada para registrar (o editar) un lote en borrador.
// ShelfLifeDays, si viene, reemplaza la vida útil estándar del producto.
type DraftBatchInput struct {
	ProductID      string
	BatchNumber    string
	Quantity       decimal.Decimal
	ProductionDate time.Time
	ShelfLifeDays  *int
}

func (in DraftBatchInput) validate() error {
	if err := inventory.CheckQuantity(in.Quantity); err != nil {
		return err
	}
	if strings.TrimSpace(in.BatchNumber) == "" || in.ProductionDate.IsZero() {
		return domain.ErrInvalidInput
	}
	if in.ShelfLifeDays != nil && *in.ShelfLifeDays < 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// DraftBatch registra un lote sin recibir. No tiene efecto sobre stock ni diario.
func (uc *BatchLedgerUseCase) DraftBatch(ctx context.Context, in DraftBatchInput) (*entity.Batch, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}
	now := time.Now().UTC()
	production := inventory.DateOnly(in.ProductionDate)
	batch := &entity.Batch{
		ID:             uuid.New().String(),
		ProductID:      product.ID,
		BatchNumber:    strings.TrimSpace(in.BatchNumber),
		Quantity:       in.Quantity,
		ProductionDate: production,
		ExpirationDate: inventory.ExpirationDate(production, inventory.ResolveShelfLife(product.ShelfLifeDays, in.ShelfLifeDays)),
		CreatedAt:      now,
		UpdatedAt:      now,
		ProductName:    product.Name,
	}
	if err := uc.batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("batch_id", batch.ID).
		Str("product_id", batch.ProductID).
		Str("quantity", batch.Quantity.String()).
		Time("expiration", batch.ExpirationDate).
		Msg("lote registrado")
	return batch, nil
}

// UpdateDraftBatch edita un lote mientras sigue en borrador y recalcula su vencimiento.
// Un lote ya recibido no se puede editar (ErrAlreadyReceived).
func (uc *BatchLedgerUseCase) UpdateDraftBatch(ctx context.Context, batchID string, in DraftBatchInput) (*entity.Batch, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *entity.Batch
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		batch, err := repos.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrUnknownBatch
		}
		if batch.IsReceived() {
			return domain.ErrAlreadyReceived
		}
		productID := in.ProductID
		if productID == "" {
			productID = batch.ProductID
		}
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		production := inventory.DateOnly(in.ProductionDate)
		batch.ProductID = product.ID
		batch.ProductName = product.Name
		batch.BatchNumber = strings.TrimSpace(in.BatchNumber)
		batch.Quantity = in.Quantity
		batch.ProductionDate = production
		batch.ExpirationDate = inventory.ExpirationDate(production, inventory.ResolveShelfLife(product.ShelfLifeDays, in.ShelfLifeDays))
		batch.UpdatedAt = time.Now().UTC()
		if err := repos.Batches.UpdateDraft(ctx, batch); err != nil {
			return err
		}
		out = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceiveResult resultado de ReceiveBatch. AlreadyReceived es informativo, no un error.
type ReceiveResult struct {
	Batch           *entity.Batch
	AlreadyReceived bool
	ReceivedAt      time.Time
	Operation       *entity.OperationRecord
	StockLevel      decimal.Decimal
	Message         string
}

// ReceiveBatch recibe un lote en bodega. Si ya estaba recibido devuelve un resultado informativo sin efectos.
// En una sola transacción: registra la operación de recepción, suma la cantidad declarada al stock del producto,
// crea el saldo vivo del lote y marca la fecha de recepción.
func (uc *BatchLedgerUseCase) ReceiveBatch(ctx context.Context, batchID, note, userID string) (*ReceiveResult, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultReceiptNote
	}
	var result *ReceiveResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		batch, err := repos.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrUnknownBatch
		}
		if batch.IsReceived() {
			result = &ReceiveResult{
				Batch:           batch,
				AlreadyReceived: true,
				ReceivedAt:      *batch.ReceivedAt,
				Message:         fmt.Sprintf("El lote %s ya fue recibido el %s", batch.BatchNumber, batch.ReceivedAt.Format(time.RFC3339)),
			}
			return nil
		}
		// Bloquea el producto: serializa con bajas y borrados del mismo producto.
		product, err := repos.Products.GetForUpdate(ctx, batch.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}

		now := time.Now().UTC()
		op := &entity.OperationRecord{
			ID:         uuid.New().String(),
			Type:       entity.OperationTypeReceipt,
			BatchID:    &batch.ID,
			ProductID:  product.ID,
			Quantity:   batch.Quantity,
			OccurredAt: now,
			Note:       note,
			CreatedBy:  userID,
		}
		if err := repos.Operations.Append(ctx, op); err != nil {
			return err
		}

		level, err := repos.Stock.GetForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		if err := inventory.ApplyStockDelta(level, batch.Quantity, now); err != nil {
			return err
		}
		if err := repos.Stock.Upsert(ctx, level); err != nil {
			return err
		}

		if err := repos.Balances.Create(ctx, &entity.LiveBalance{
			BatchID:   batch.ID,
			ProductID: product.ID,
			Quantity:  batch.Quantity,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		if err := repos.Batches.MarkReceived(ctx, batch.ID, now); err != nil {
			return err
		}
		batch.ReceivedAt = &now
		batch.HasBalance = true
		batch.ProductName = product.Name

		op.BatchNumber = batch.BatchNumber
		op.ProductName = product.Name
		result = &ReceiveResult{
			Batch:      batch,
			ReceivedAt: now,
			Operation:  op,
			StockLevel: level.Quantity,
			Message:    fmt.Sprintf("Lote %s recibido, stock actualizado", batch.BatchNumber),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyReceived {
		uc.log.Info().Str("batch_id", batchID).Msg("recepción ignorada: lote ya recibido")
	} else {
		uc.log.Info().
			Str("batch_id", batchID).
			Str("product_id", result.Batch.ProductID).
			Str("quantity", result.Batch.Quantity.String()).
			Str("stock", result.StockLevel.String()).
			Msg("lote recibido")
	}
	return result, nil
}

// DeleteBatch elimina un lote sin saldo vivo (borrador o agotado).
// Las operaciones del diario se conservan con la referencia al lote en nulo.
func (uc *BatchLedgerUseCase) DeleteBatch(ctx context.Context, batchID string) error {
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		batch, err := repos.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrUnknownBatch
		}
		bal, err := repos.Balances.GetByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if bal != nil {
			return domain.ErrReferencedEntity
		}
		return repos.Batches.Delete(ctx, batchID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("batch_id", batchID).Msg("lote eliminado")
	return nil
}

// GetBatch obtiene un lote por ID.
func (uc *BatchLedgerUseCase) GetBatch(ctx context.Context, batchID string) (*entity.Batch, error) {
	b, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrUnknownBatch
	}
	return b, nil
}

// ListBatches lista lotes con filtros de texto, estado y rangos de fechas.
func (uc *BatchLedgerUseCase) ListBatches(ctx context.Context, filter repository.BatchFilter, sort repository.Sort, page repository.Page) ([]*entity.Batch, error) {
	return uc.batches.List(ctx, filter, sort, page.Normalize())
}
