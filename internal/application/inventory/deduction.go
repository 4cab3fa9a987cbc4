package inventory

import (
	"context"
	"errors"
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

// DeductionUseCase bajas de inventario por lote (selección explícita) o por producto (FEFO automático).
// Toda la baja es una sola transacción con la fila del producto bloqueada: validar todo y luego aplicar todo.
type DeductionUseCase struct {
	txRunner TxRunner
	balances repository.LiveBalanceRepository
	products repository.ProductReader
	log      *logger.Logger
}

// NewDeductionUseCase construye el caso de uso.
func NewDeductionUseCase(
	txRunner TxRunner,
	balances repository.LiveBalanceRepository,
	products repository.ProductReader,
	log *logger.Logger,
) *DeductionUseCase {
	return &DeductionUseCase{txRunner: txRunner, balances: balances, products: products, log: log}
}

// DeductionRequest baja con cantidades explícitas por lote (batchID → cantidad).
type DeductionRequest struct {
	ProductID string
	Draws     map[string]decimal.Decimal
	Reason    string
	Document  string
	Note      string
	UserID    string
}

// AutoDeductionRequest baja de una cantidad total que se reparte en orden FEFO.
type AutoDeductionRequest struct {
	ProductID string
	Quantity  decimal.Decimal
	Reason    string
	Document  string
	Note      string
	UserID    string
}

// DeductionLine detalle de la baja aplicada a un lote.
type DeductionLine struct {
	BatchID     string
	BatchNumber string
	OperationID string
	Quantity    decimal.Decimal
	Remaining   decimal.Decimal
	Depleted    bool
}

// DeductionResult resultado de una baja.
type DeductionResult struct {
	ProductID  string
	TotalDrawn decimal.Decimal
	StockLevel decimal.Decimal
	Lines      []DeductionLine
}

// GetLiveBatchesForProduct devuelve los saldos vivos del producto en orden FEFO.
func (uc *DeductionUseCase) GetLiveBatchesForProduct(ctx context.Context, productID string) ([]*entity.LiveBalance, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUnknownProduct
	}
	list, err := uc.balances.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(list)
	return list, nil
}

// DeductBatches aplica una baja con cantidades explícitas por lote.
// Si alguna cantidad supera el saldo vivo de su lote, la baja completa se rechaza sin modificar nada.
func (uc *DeductionUseCase) DeductBatches(ctx context.Context, req DeductionRequest) (*DeductionResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}
	var result *DeductionResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		product, err := lockProduct(ctx, repos, req.ProductID)
		if err != nil {
			return err
		}
		numbers := make(map[string]string, len(req.Draws))
		for batchID, qty := range req.Draws {
			if qty.IsZero() {
				continue
			}
			b, err := repos.Batches.GetByID(ctx, batchID)
			if err != nil {
				return err
			}
			if b == nil || b.ProductID != product.ID {
				return domain.ErrUnknownBatch
			}
			numbers[batchID] = b.BatchNumber
		}
		balances, err := repos.Balances.ListByProductForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		draws, err := inventory.ValidateDraws(balances, req.Draws)
		if err != nil {
			var balErr *domain.InsufficientBatchBalanceError
			if errors.As(err, &balErr) && balErr.BatchNumber == "" {
				balErr.BatchNumber = numbers[balErr.BatchID]
			}
			return err
		}
		result, err = uc.apply(ctx, repos, product, draws, deductionMeta{
			reason: reason, document: req.Document, note: req.Note, userID: req.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logDeduction(result, reason)
	return result, nil
}

// DeductByProduct da de baja una cantidad total del producto tomando primero de los lotes que vencen antes.
func (uc *DeductionUseCase) DeductByProduct(ctx context.Context, req AutoDeductionRequest) (*DeductionResult, error) {
	if err := inventory.CheckQuantity(req.Quantity); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}
	var result *DeductionResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		product, err := lockProduct(ctx, repos, req.ProductID)
		if err != nil {
			return err
		}
		balances, err := repos.Balances.ListByProductForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		draws, err := inventory.AllocateFEFO(balances, req.Quantity)
		if err != nil {
			return err
		}
		result, err = uc.apply(ctx, repos, product, draws, deductionMeta{
			reason: reason, document: req.Document, note: req.Note, userID: req.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logDeduction(result, reason)
	return result, nil
}

type deductionMeta struct {
	reason   string
	document string
	note     string
	userID   string
}

// apply aplica descuentos ya validados dentro de la transacción del llamador.
func (uc *DeductionUseCase) apply(
	ctx context.Context,
	repos Repos,
	product *entity.Product,
	draws []inventory.Draw,
	meta deductionMeta,
) (*DeductionResult, error) {
	now := time.Now().UTC()
	result := &DeductionResult{ProductID: product.ID, Lines: make([]DeductionLine, 0, len(draws))}

	for _, d := range draws {
		batchID := d.Balance.BatchID
		op := &entity.OperationRecord{
			ID:         uuid.New().String(),
			Type:       entity.OperationTypeDeduction,
			BatchID:    &batchID,
			ProductID:  product.ID,
			Quantity:   d.Quantity,
			OccurredAt: now,
			Reason:     meta.reason,
			Document:   strings.TrimSpace(meta.document),
			Note:       strings.TrimSpace(meta.note),
			CreatedBy:  meta.userID,
		}
		if err := repos.Operations.Append(ctx, op); err != nil {
			return nil, err
		}

		remaining := d.Remaining()
		depleted := remaining.IsZero()
		if depleted {
			// Saldo exactamente en cero: el lote queda agotado.
			if err := repos.Balances.Delete(ctx, batchID); err != nil {
				return nil, err
			}
		} else {
			d.Balance.Quantity = remaining
			d.Balance.UpdatedAt = now
			if err := repos.Balances.Update(ctx, d.Balance); err != nil {
				return nil, err
			}
		}
		result.TotalDrawn = result.TotalDrawn.Add(d.Quantity)
		result.Lines = append(result.Lines, DeductionLine{
			BatchID:     batchID,
			BatchNumber: d.Balance.BatchNumber,
			OperationID: op.ID,
			Quantity:    d.Quantity,
			Remaining:   remaining,
			Depleted:    depleted,
		})
	}

	level, err := repos.Stock.GetForUpdate(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if err := inventory.ApplyStockDelta(level, result.TotalDrawn.Neg(), now); err != nil {
		if errors.Is(err, domain.ErrNegativeStock) {
			uc.log.Error().
				Str("product_id", product.ID).
				Str("stock", level.Quantity.String()).
				Str("drawn", result.TotalDrawn.String()).
				Msg("inconsistencia: el stock agregado quedaría negativo")
		}
		return nil, err
	}
	if err := repos.Stock.Upsert(ctx, level); err != nil {
		return nil, err
	}
	result.StockLevel = level.Quantity
	return result, nil
}

func (uc *DeductionUseCase) logDeduction(result *DeductionResult, reason string) {
	uc.log.Info().
		Str("product_id", result.ProductID).
		Str("total", result.TotalDrawn.String()).
		Int("batches", len(result.Lines)).
		Str("stock", result.StockLevel.String()).
		Str("reason", reason).
		Msg("baja registrada")
}

func lockProduct(ctx context.Context, repos Repos, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrUnknownProduct
	}
	product, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}
	return product, nil
}
