package inventory

import (
	"context"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// StockUseCase lectura del stock agregado por producto. El stock solo lo escriben recepciones y bajas.
type StockUseCase struct {
	txRunner TxRunner
	stock    repository.StockRepository
	products repository.ProductReader
	log      *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	stock repository.StockRepository,
	products repository.ProductReader,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, stock: stock, products: products, log: log}
}

// CurrentLevel devuelve el stock actual del producto (cero si nunca se recibió un lote).
func (uc *StockUseCase) CurrentLevel(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.ErrUnknownProduct
	}
	level, err := uc.stock.Get(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return level.Quantity, nil
}

// ListStockLevels lista niveles de stock con filtro de texto, orden y paginación.
func (uc *StockUseCase) ListStockLevels(ctx context.Context, filter repository.StockFilter, sort repository.Sort, page repository.Page) ([]*entity.StockLevel, error) {
	return uc.stock.List(ctx, filter, sort, page.Normalize())
}

// ConsistencyReport compara el stock agregado con la suma de saldos vivos de un producto.
type ConsistencyReport struct {
	ProductID   string
	StockLevel  decimal.Decimal
	LiveTotal   decimal.Decimal
	LiveBatches int
	Consistent  bool
}

// CheckConsistency verifica StockLevel == Σ saldos vivos.
func (uc *StockUseCase) CheckConsistency(ctx context.Context, productID string) (*ConsistencyReport, error) {
	var report *ConsistencyReport
	// Stock y saldos se leen del mismo snapshot.
	err := uc.txRunner.RunReadOnly(ctx, func(repos Repos) error {
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		level, err := repos.Stock.Get(ctx, product.ID)
		if err != nil {
			return err
		}
		balances, err := repos.Balances.ListByProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		live := inventory.SumBalances(balances)
		report = &ConsistencyReport{
			ProductID:   product.ID,
			StockLevel:  level.Quantity,
			LiveTotal:   live,
			LiveBatches: len(balances),
			Consistent:  level.Quantity.Equal(live),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		uc.log.Error().
			Str("product_id", productID).
			Str("stock", report.StockLevel.String()).
			Str("live_total", report.LiveTotal.String()).
			Msg("inconsistencia entre stock agregado y saldos vivos")
	}
	return report, nil
}
