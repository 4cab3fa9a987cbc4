package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// exportPageSize tamaño de página al recorrer el diario completo para exportar.
const exportPageSize = 100

// NoBatchLabel se muestra cuando la operación no tiene lote (lote eliminado o baja sin lote).
const NoBatchLabel = "—"

// JournalUseCase lectura del diario de operaciones y filas para exportación tabular.
type JournalUseCase struct {
	txRunner   TxRunner
	operations repository.OperationRepository
}

// NewJournalUseCase construye el caso de uso.
func NewJournalUseCase(txRunner TxRunner, operations repository.OperationRepository) *JournalUseCase {
	return &JournalUseCase{txRunner: txRunner, operations: operations}
}

// ListOperations lista operaciones (por defecto fecha descendente).
func (uc *JournalUseCase) ListOperations(ctx context.Context, filter repository.OperationFilter, sort repository.Sort, page repository.Page) ([]*entity.OperationRecord, error) {
	return uc.operations.List(ctx, filter, sort, page.Normalize())
}

// OperationExportRow fila de exportación del diario.
type OperationExportRow struct {
	ID          string
	Type        string
	TypeLabel   string
	BatchNumber string
	ProductName string
	OccurredAt  time.Time
	Quantity    decimal.Decimal
	Reason      string
	Document    string
	Note        string
}

// StockExportRow fila de exportación de stock.
type StockExportRow struct {
	Code     string
	Name     string
	Quantity decimal.Decimal
}

// ExportOperations devuelve todas las operaciones que cumplen el filtro. El formato de archivo lo decide el llamador.
// Todas las páginas se leen del mismo snapshot: lo que se confirme durante el recorrido no desplaza los offsets.
func (uc *JournalUseCase) ExportOperations(ctx context.Context, filter repository.OperationFilter) ([]OperationExportRow, error) {
	rows := make([]OperationExportRow, 0)
	err := uc.txRunner.RunReadOnly(ctx, func(repos Repos) error {
		page := repository.Page{Limit: exportPageSize}
		for {
			list, err := repos.Operations.List(ctx, filter, repository.Sort{}, page)
			if err != nil {
				return err
			}
			for _, op := range list {
				rows = append(rows, toExportRow(op))
			}
			if len(list) < page.Limit {
				return nil
			}
			page.Offset += page.Limit
		}
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func toExportRow(op *entity.OperationRecord) OperationExportRow {
	batchNumber := NoBatchLabel
	if op.BatchID != nil && op.BatchNumber != "" {
		batchNumber = op.BatchNumber
	}
	return OperationExportRow{
		ID:          op.ID,
		Type:        op.Type,
		TypeLabel:   entity.OperationTypeLabel(op.Type),
		BatchNumber: batchNumber,
		ProductName: op.ProductName,
		OccurredAt:  op.OccurredAt,
		Quantity:    op.Quantity,
		Reason:      op.Reason,
		Document:    op.Document,
		Note:        op.Note,
	}
}

// ExportStockLevels devuelve todos los niveles de stock (código, nombre, cantidad), leídos de un mismo snapshot.
func (uc *JournalUseCase) ExportStockLevels(ctx context.Context, filter repository.StockFilter) ([]StockExportRow, error) {
	rows := make([]StockExportRow, 0)
	err := uc.txRunner.RunReadOnly(ctx, func(repos Repos) error {
		page := repository.Page{Limit: exportPageSize}
		for {
			list, err := repos.Stock.List(ctx, filter, repository.Sort{Field: "code"}, page)
			if err != nil {
				return err
			}
			for _, l := range list {
				rows = append(rows, StockExportRow{Code: l.ProductCode, Name: l.ProductName, Quantity: l.Quantity})
			}
			if len(list) < page.Limit {
				return nil
			}
			page.Offset += page.Limit
		}
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
