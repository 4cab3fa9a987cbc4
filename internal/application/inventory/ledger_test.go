package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/internal/infrastructure/memory"
	"github.com/jhoicas/perecederos-api/pkg/logger"
)

type fixture struct {
	repos      inventory.Repos
	catalog    *inventory.CatalogUseCase
	ledger     *inventory.BatchLedgerUseCase
	deductions *inventory.DeductionUseCase
	stock      *inventory.StockUseCase
	journal    *inventory.JournalUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	log := logger.Nop()
	return &fixture{
		repos:      repos,
		catalog:    inventory.NewCatalogUseCase(store, repos.Products, nil, log),
		ledger:     inventory.NewBatchLedgerUseCase(store, repos.Batches, repos.Products, log),
		deductions: inventory.NewDeductionUseCase(store, repos.Balances, repos.Products, log),
		stock:      inventory.NewStockUseCase(store, repos.Stock, repos.Products, log),
		journal:    inventory.NewJournalUseCase(store, repos.Operations),
	}
}

var ctx = context.Background()

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) product(t *testing.T, code string, shelfLife int) *entity.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(ctx, inventory.CreateProductInput{
		Code: code, Name: "Producto " + code, Unit: "kg", ShelfLifeDays: shelfLife,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) draft(t *testing.T, productID, number string, q int64, production string) *entity.Batch {
	t.Helper()
	b, err := f.ledger.DraftBatch(ctx, inventory.DraftBatchInput{
		ProductID: productID, BatchNumber: number, Quantity: qty(q), ProductionDate: day(production),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) receive(t *testing.T, batchID string) *inventory.ReceiveResult {
	t.Helper()
	r, err := f.ledger.ReceiveBatch(ctx, batchID, "", "tester")
	require.NoError(t, err)
	return r
}

// assertConsistent verifica stock == Σ saldos vivos.
func (f *fixture) assertConsistent(t *testing.T, productID string) {
	t.Helper()
	r, err := f.stock.CheckConsistency(ctx, productID)
	require.NoError(t, err)
	assert.True(t, r.Consistent, "stock %s != saldos vivos %s", r.StockLevel, r.LiveTotal)
}

type snapshot struct {
	stock      decimal.Decimal
	balances   map[string]string
	operations int
}

func (f *fixture) snapshot(t *testing.T, productID string) snapshot {
	t.Helper()
	level, err := f.stock.CurrentLevel(ctx, productID)
	require.NoError(t, err)
	list, err := f.deductions.GetLiveBatchesForProduct(ctx, productID)
	require.NoError(t, err)
	balances := map[string]string{}
	for _, lb := range list {
		balances[lb.BatchID] = lb.Quantity.String()
	}
	ops, err := f.journal.ListOperations(ctx, repository.OperationFilter{ProductID: productID}, repository.Sort{}, repository.Page{Limit: 100})
	require.NoError(t, err)
	return snapshot{stock: level, balances: balances, operations: len(ops)}
}

func TestEjemplo_RecepcionYBajaParcial(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "LECHE", 30)
	b := f.draft(t, p.ID, "L-001", 100, "2024-01-01")
	assert.Equal(t, day("2024-01-31"), b.ExpirationDate)
	assert.Equal(t, entity.BatchStatusDrafted, b.Status())

	r := f.receive(t, b.ID)
	assert.False(t, r.AlreadyReceived)
	assert.True(t, r.StockLevel.Equal(qty(100)))
	require.NotNil(t, r.Operation)
	assert.Equal(t, entity.OperationTypeReceipt, r.Operation.Type)
	assert.Equal(t, inventory.DefaultReceiptNote, r.Operation.Note)
	f.assertConsistent(t, p.ID)

	res, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{
		ProductID: p.ID, Quantity: qty(40), Reason: "merma",
	})
	require.NoError(t, err)
	assert.True(t, res.StockLevel.Equal(qty(60)))
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Remaining.Equal(qty(60)))
	assert.False(t, res.Lines[0].Depleted)
	f.assertConsistent(t, p.ID)

	got, err := f.ledger.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusReceived, got.Status())
}

func TestEjemplo_FEFOAgotaPrimerLote(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "QUESO", 10)
	b1 := f.draft(t, p.ID, "B1", 10, "2024-01-01")
	b2 := f.draft(t, p.ID, "B2", 50, "2024-01-05")
	f.receive(t, b1.ID)
	f.receive(t, b2.ID)

	res, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{
		ProductID: p.ID, Quantity: qty(30), Reason: "venta",
	})
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, b1.ID, res.Lines[0].BatchID)
	assert.True(t, res.Lines[0].Depleted)
	assert.True(t, res.Lines[1].Remaining.Equal(qty(30)))
	assert.True(t, res.StockLevel.Equal(qty(30)))

	live, err := f.deductions.GetLiveBatchesForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, b2.ID, live[0].BatchID)

	depleted, err := f.ledger.GetBatch(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusDepleted, depleted.Status())
	f.assertConsistent(t, p.ID)
}

func TestDeductByProduct_SoloTocaElLoteQueVenceAntes(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "YOGUR", 20)
	late := f.draft(t, p.ID, "TARDE", 100, "2024-02-01")
	early := f.draft(t, p.ID, "TEMPRANO", 100, "2024-01-01")
	f.receive(t, late.ID)
	f.receive(t, early.ID)

	res, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{
		ProductID: p.ID, Quantity: qty(40), Reason: "venta",
	})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, early.ID, res.Lines[0].BatchID)

	untouched, err := f.repos.Balances.GetByBatch(ctx, late.ID)
	require.NoError(t, err)
	assert.True(t, untouched.Quantity.Equal(qty(100)))
}

func TestReceiveBatch_Idempotente(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "PAN", 3)
	b := f.draft(t, p.ID, "P-1", 20, "2024-01-01")
	first := f.receive(t, b.ID)
	before := f.snapshot(t, p.ID)

	second := f.receive(t, b.ID)
	assert.True(t, second.AlreadyReceived)
	assert.Nil(t, second.Operation)
	assert.True(t, first.ReceivedAt.Equal(second.ReceivedAt))
	assert.Contains(t, second.Message, "P-1")
	assert.Equal(t, before, f.snapshot(t, p.ID))
}

func TestReceiveBatch_LoteDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.ReceiveBatch(ctx, "no-existe", "", "")
	assert.ErrorIs(t, err, domain.ErrUnknownBatch)
}

func TestDeductBatches_RechazoNoModificaNada(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "CARNE", 5)
	b1 := f.draft(t, p.ID, "C1", 10, "2024-01-01")
	b2 := f.draft(t, p.ID, "C2", 50, "2024-01-02")
	f.receive(t, b1.ID)
	f.receive(t, b2.ID)
	before := f.snapshot(t, p.ID)

	_, err := f.deductions.DeductBatches(ctx, inventory.DeductionRequest{
		ProductID: p.ID,
		Draws:     map[string]decimal.Decimal{b1.ID: qty(5), b2.ID: qty(60)},
		Reason:    "vencido",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBatchBalance)
	var balErr *domain.InsufficientBatchBalanceError
	require.True(t, errors.As(err, &balErr))
	assert.Equal(t, "C2", balErr.BatchNumber)
	assert.True(t, balErr.Available.Equal(qty(50)))

	assert.Equal(t, before, f.snapshot(t, p.ID))
	f.assertConsistent(t, p.ID)
}

func TestDeductBatches_AplicaSeleccionExplicita(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "FRUTA", 7)
	b1 := f.draft(t, p.ID, "F1", 10, "2024-01-01")
	b2 := f.draft(t, p.ID, "F2", 50, "2024-01-02")
	f.receive(t, b1.ID)
	f.receive(t, b2.ID)

	res, err := f.deductions.DeductBatches(ctx, inventory.DeductionRequest{
		ProductID: p.ID,
		Draws:     map[string]decimal.Decimal{b1.ID: qty(10), b2.ID: qty(5)},
		Reason:    "donación",
		Document:  "ACTA-7",
		UserID:    "admin-1",
	})
	require.NoError(t, err)
	assert.True(t, res.TotalDrawn.Equal(qty(15)))
	assert.True(t, res.StockLevel.Equal(qty(45)))

	ops, err := f.journal.ListOperations(ctx, repository.OperationFilter{ProductID: p.ID, Type: entity.OperationTypeDeduction}, repository.Sort{}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, "donación", op.Reason)
		assert.Equal(t, "ACTA-7", op.Document)
		assert.Equal(t, "admin-1", op.CreatedBy)
	}
	f.assertConsistent(t, p.ID)
}

func TestDeductBatches_Errores(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "HUEVO", 15)
	other := f.product(t, "OTRO", 15)
	b := f.draft(t, p.ID, "H1", 10, "2024-01-01")
	ob := f.draft(t, other.ID, "O1", 10, "2024-01-01")
	f.receive(t, b.ID)
	f.receive(t, ob.ID)
	drafted := f.draft(t, p.ID, "H2", 10, "2024-01-03")

	tests := []struct {
		name string
		req  inventory.DeductionRequest
		want error
	}{
		{"sin causa", inventory.DeductionRequest{ProductID: p.ID, Draws: map[string]decimal.Decimal{b.ID: qty(1)}, Reason: "  "}, domain.ErrMissingReason},
		{"producto desconocido", inventory.DeductionRequest{ProductID: "x", Draws: map[string]decimal.Decimal{b.ID: qty(1)}, Reason: "r"}, domain.ErrUnknownProduct},
		{"lote de otro producto", inventory.DeductionRequest{ProductID: p.ID, Draws: map[string]decimal.Decimal{ob.ID: qty(1)}, Reason: "r"}, domain.ErrUnknownBatch},
		{"lote sin recibir", inventory.DeductionRequest{ProductID: p.ID, Draws: map[string]decimal.Decimal{drafted.ID: qty(1)}, Reason: "r"}, domain.ErrInsufficientBatchBalance},
		{"selección vacía", inventory.DeductionRequest{ProductID: p.ID, Draws: map[string]decimal.Decimal{b.ID: decimal.Zero}, Reason: "r"}, domain.ErrEmptySelection},
		{"cantidad negativa", inventory.DeductionRequest{ProductID: p.ID, Draws: map[string]decimal.Decimal{b.ID: qty(-1)}, Reason: "r"}, domain.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.snapshot(t, p.ID)
			_, err := f.deductions.DeductBatches(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, f.snapshot(t, p.ID))
		})
	}
}

func TestDeductByProduct_Errores(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "MIEL", 365)

	_, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: qty(1), Reason: "r"})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	b := f.draft(t, p.ID, "M1", 10, "2024-01-01")
	f.receive(t, b.ID)

	_, err = f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: qty(11), Reason: "r"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: decimal.Zero, Reason: "r"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: qty(1)})
	assert.ErrorIs(t, err, domain.ErrMissingReason)

	level, err := f.stock.CurrentLevel(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, level.Equal(qty(10)))
}

func TestDeductByProduct_DecimalesExactos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "ACEITE", 90)
	b, err := f.ledger.DraftBatch(ctx, inventory.DraftBatchInput{
		ProductID: p.ID, BatchNumber: "A1", Quantity: decimal.RequireFromString("0.3"), ProductionDate: day("2024-01-01"),
	})
	require.NoError(t, err)
	f.receive(t, b.ID)

	for range 3 {
		_, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{
			ProductID: p.ID, Quantity: decimal.RequireFromString("0.1"), Reason: "uso",
		})
		require.NoError(t, err)
	}
	live, err := f.deductions.GetLiveBatchesForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, live, "0.3 - 3×0.1 es exactamente cero: el saldo vivo se elimina")
	f.assertConsistent(t, p.ID)
}

func TestDeductions_Concurrentes(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "AGUA", 100)
	b := f.draft(t, p.ID, "W1", 100, "2024-01-01")
	f.receive(t, b.ID)

	var g errgroup.Group
	for range 10 {
		g.Go(func() error {
			_, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{
				ProductID: p.ID, Quantity: qty(10), Reason: "venta",
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	level, err := f.stock.CurrentLevel(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, level.IsZero())
	f.assertConsistent(t, p.ID)

	_, err = f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: qty(1), Reason: "venta"})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestCreateProduct_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.product(t, "SAL", 0)

	_, err := f.catalog.CreateProduct(ctx, inventory.CreateProductInput{Code: "SAL", Name: "Otra", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	_, err = f.catalog.CreateProduct(ctx, inventory.CreateProductInput{Code: "X", Name: "", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.catalog.CreateProduct(ctx, inventory.CreateProductInput{Code: "Y", Name: "Y", Unit: "kg", ShelfLifeDays: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteProduct_SoloSinReferencias(t *testing.T) {
	f := newFixture(t)
	free := f.product(t, "LIBRE", 5)
	used := f.product(t, "USADO", 5)
	f.draft(t, used.ID, "U1", 1, "2024-01-01")

	require.NoError(t, f.catalog.DeleteProduct(ctx, free.ID))
	_, err := f.catalog.GetProduct(ctx, free.ID)
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)

	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, used.ID), domain.ErrReferencedEntity)
	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, free.ID), domain.ErrUnknownProduct)

	_, err = f.catalog.GetProduct(ctx, used.ID)
	assert.NoError(t, err)
}

func TestUpdateDraftBatch(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "JAMON", 30)
	b := f.draft(t, p.ID, "J1", 10, "2024-01-01")
	override := 5

	updated, err := f.ledger.UpdateDraftBatch(ctx, b.ID, inventory.DraftBatchInput{
		BatchNumber: "J1-bis", Quantity: qty(12), ProductionDate: day("2024-01-10"), ShelfLifeDays: &override,
	})
	require.NoError(t, err)
	assert.Equal(t, "J1-bis", updated.BatchNumber)
	assert.Equal(t, day("2024-01-15"), updated.ExpirationDate)
	assert.Equal(t, b.Seq, updated.Seq)

	f.receive(t, b.ID)
	_, err = f.ledger.UpdateDraftBatch(ctx, b.ID, inventory.DraftBatchInput{
		BatchNumber: "J1", Quantity: qty(1), ProductionDate: day("2024-01-10"),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)

	level, err := f.stock.CurrentLevel(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, level.Equal(qty(12)))
}

func TestDraftBatch_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "ARROZ", 180)

	_, err := f.ledger.DraftBatch(ctx, inventory.DraftBatchInput{ProductID: p.ID, BatchNumber: "A", Quantity: decimal.Zero, ProductionDate: day("2024-01-01")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.ledger.DraftBatch(ctx, inventory.DraftBatchInput{ProductID: p.ID, BatchNumber: "", Quantity: qty(1), ProductionDate: day("2024-01-01")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.DraftBatch(ctx, inventory.DraftBatchInput{ProductID: "nope", BatchNumber: "A", Quantity: qty(1), ProductionDate: day("2024-01-01")})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestDeleteBatch(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "POLLO", 4)
	draft := f.draft(t, p.ID, "D", 5, "2024-01-01")
	live := f.draft(t, p.ID, "V", 5, "2024-01-02")
	f.receive(t, live.ID)

	require.NoError(t, f.ledger.DeleteBatch(ctx, draft.ID))
	assert.ErrorIs(t, f.ledger.DeleteBatch(ctx, live.ID), domain.ErrReferencedEntity)

	_, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: qty(5), Reason: "venta"})
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteBatch(ctx, live.ID), "un lote agotado se puede eliminar")

	rows, err := f.journal.ExportOperations(ctx, repository.OperationFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2, "las operaciones se conservan")
	for _, r := range rows {
		assert.Equal(t, inventory.NoBatchLabel, r.BatchNumber)
	}
	assert.ErrorIs(t, f.ledger.DeleteBatch(ctx, live.ID), domain.ErrUnknownBatch)
}

func TestListBatches_FiltrosYOrden(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "TOMATE", 10)
	a := f.draft(t, p.ID, "T-A", 5, "2024-01-03")
	b := f.draft(t, p.ID, "T-B", 5, "2024-01-01")
	f.receive(t, a.ID)

	list, err := f.ledger.ListBatches(ctx, repository.BatchFilter{ProductID: p.ID}, repository.Sort{Field: "production_date"}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	list, err = f.ledger.ListBatches(ctx, repository.BatchFilter{Status: entity.BatchStatusDrafted}, repository.Sort{}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	list, err = f.ledger.ListBatches(ctx, repository.BatchFilter{Query: "t-a"}, repository.Sort{}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	from := day("2024-01-02")
	list, err = f.ledger.ListBatches(ctx, repository.BatchFilter{ProductionFrom: &from}, repository.Sort{}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestExportaciones(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "MANZANA", 20)
	b := f.draft(t, p.ID, "M-1", 30, "2024-01-01")
	f.receive(t, b.ID)
	_, err := f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: qty(5), Reason: "golpeada", Note: "cajón 3"})
	require.NoError(t, err)

	ops, err := f.journal.ExportOperations(ctx, repository.OperationFilter{})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	// Más recientes primero.
	assert.Equal(t, "Baja", ops[0].TypeLabel)
	assert.Equal(t, "golpeada", ops[0].Reason)
	assert.Equal(t, "cajón 3", ops[0].Note)
	assert.Equal(t, "M-1", ops[0].BatchNumber)
	assert.Equal(t, "Recepción", ops[1].TypeLabel)

	stock, err := f.journal.ExportStockLevels(ctx, repository.StockFilter{})
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, "MANZANA", stock[0].Code)
	assert.True(t, stock[0].Quantity.Equal(qty(25)))
}

func TestCantidades_MasDeTresDecimalesSeRechazan(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "QUESO", 30)
	b := f.draft(t, p.ID, "Q-1", 10, "2024-01-01")
	f.receive(t, b.ID)
	before := f.snapshot(t, p.ID)

	fine := decimal.RequireFromString("0.0015")
	_, err := f.ledger.DraftBatch(ctx, inventory.DraftBatchInput{ProductID: p.ID, BatchNumber: "Q-2", Quantity: fine, ProductionDate: day("2024-01-02")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.deductions.DeductByProduct(ctx, inventory.AutoDeductionRequest{ProductID: p.ID, Quantity: fine, Reason: "merma"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.deductions.DeductBatches(ctx, inventory.DeductionRequest{
		ProductID: p.ID, Reason: "merma", Draws: map[string]decimal.Decimal{b.ID: fine},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Equal(t, before, f.snapshot(t, p.ID))
	f.assertConsistent(t, p.ID)
}

// interleavingRunner confirma una recepción nueva justo después de que la exportación lee su primera página.
type interleavingRunner struct {
	inventory.TxRunner
	between func()
}

func (r *interleavingRunner) RunReadOnly(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return r.TxRunner.RunReadOnly(ctx, func(repos inventory.Repos) error {
		repos.Operations = &pageHook{OperationRepository: repos.Operations, after: r.between}
		return fn(repos)
	})
}

type pageHook struct {
	repository.OperationRepository
	after func()
	fired bool
}

func (h *pageHook) List(ctx context.Context, f repository.OperationFilter, s repository.Sort, p repository.Page) ([]*entity.OperationRecord, error) {
	list, err := h.OperationRepository.List(ctx, f, s, p)
	if !h.fired {
		h.fired = true
		h.after()
	}
	return list, err
}

func TestExportOperations_EscrituraEntrePaginasNoDuplicaNiPierde(t *testing.T) {
	store := memory.New()
	repos := store.Repos()
	log := logger.Nop()
	catalog := inventory.NewCatalogUseCase(store, repos.Products, nil, log)
	ledger := inventory.NewBatchLedgerUseCase(store, repos.Batches, repos.Products, log)

	p, err := catalog.CreateProduct(ctx, inventory.CreateProductInput{Code: "LECHE", Name: "Leche", Unit: "l", ShelfLifeDays: 7})
	require.NoError(t, err)
	newReceipt := func(n int) {
		b, err := ledger.DraftBatch(ctx, inventory.DraftBatchInput{
			ProductID: p.ID, BatchNumber: fmt.Sprintf("L-%03d", n), Quantity: qty(1), ProductionDate: day("2024-01-01"),
		})
		require.NoError(t, err)
		_, err = ledger.ReceiveBatch(ctx, b.ID, "", "tester")
		require.NoError(t, err)
	}
	const seeded = 130
	for i := range seeded {
		newReceipt(i)
	}

	next := seeded
	runner := &interleavingRunner{TxRunner: store, between: func() {
		newReceipt(next)
		next++
	}}
	journal := inventory.NewJournalUseCase(runner, repos.Operations)

	rows, err := journal.ExportOperations(ctx, repository.OperationFilter{})
	require.NoError(t, err)
	require.Len(t, rows, seeded)
	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.ID], "operación repetida %s", r.ID)
		seen[r.ID] = true
	}

	// La recepción intercalada sí queda para la siguiente exportación.
	rows, err = journal.ExportOperations(ctx, repository.OperationFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, seeded+1)
	assert.Equal(t, "L-130", rows[0].BatchNumber)
}
