package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, repos appinventory.Repos, id, code string) {
	t.Helper()
	require.NoError(t, repos.Products.Create(context.Background(), &entity.Product{
		ID: id, Code: code, Name: "Producto " + code, Unit: "kg", ShelfLifeDays: 10,
	}))
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "P1")

	boom := errors.New("boom")
	err := store.Run(ctx, func(tx appinventory.Repos) error {
		require.NoError(t, tx.Stock.Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: decimal.NewFromInt(5)}))
		require.NoError(t, tx.Products.Delete(ctx, "p1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := repos.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.NotNil(t, p)
	level, err := repos.Stock.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, level.Quantity.IsZero())
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "P1")

	err := store.Run(ctx, func(tx appinventory.Repos) error {
		return tx.Stock.Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: decimal.NewFromInt(7)})
	})
	require.NoError(t, err)

	level, err := repos.Stock.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "P1", level.ProductCode)
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.New().Run(ctx, func(appinventory.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProductRepo_CodigoDuplicado(t *testing.T) {
	repos := memory.New().Repos()
	seedProduct(t, repos, "p1", "DUP")
	err := repos.Products.Create(context.Background(), &entity.Product{ID: "p2", Code: "DUP", Name: "x", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestBatchRepo_SecuenciaYSaldos(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repos()
	seedProduct(t, repos, "p1", "P1")

	mk := func(id, number string, exp time.Time) *entity.Batch {
		b := &entity.Batch{
			ID: id, ProductID: "p1", BatchNumber: number, Quantity: decimal.NewFromInt(10),
			ProductionDate: exp.AddDate(0, 0, -10), ExpirationDate: exp,
		}
		require.NoError(t, repos.Batches.Create(ctx, b))
		return b
	}
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	b1 := mk("b1", "L1", jan)
	b2 := mk("b2", "L2", jan)
	b3 := mk("b3", "L3", jan.AddDate(0, 0, -5))
	assert.Less(t, b1.Seq, b2.Seq)
	assert.Less(t, b2.Seq, b3.Seq)

	for _, b := range []*entity.Batch{b1, b2, b3} {
		require.NoError(t, repos.Balances.Create(ctx, &entity.LiveBalance{BatchID: b.ID, ProductID: "p1", Quantity: b.Quantity}))
	}
	err := repos.Balances.Create(ctx, &entity.LiveBalance{BatchID: "b1", ProductID: "p1", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)
	err = repos.Balances.Create(ctx, &entity.LiveBalance{BatchID: "nope", ProductID: "p1", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrUnknownBatch)

	list, err := repos.Balances.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b3", "b1", "b2"}, []string{list[0].BatchID, list[1].BatchID, list[2].BatchID})
	assert.Equal(t, "L3", list[0].BatchNumber)

	assert.ErrorIs(t, repos.Batches.Delete(ctx, "b1"), domain.ErrReferencedEntity)
	require.NoError(t, repos.Balances.Delete(ctx, "b1"))
	require.NoError(t, repos.Batches.Delete(ctx, "b1"))

	got, err := repos.Batches.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOperationRepo_AppendYListado(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repos()
	seedProduct(t, repos, "p1", "P1")

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, typ := range []string{entity.OperationTypeReceipt, entity.OperationTypeDeduction, entity.OperationTypeDeduction} {
		require.NoError(t, repos.Operations.Append(ctx, &entity.OperationRecord{
			ID: typ + string(rune('a'+i)), Type: typ, ProductID: "p1",
			Quantity: decimal.NewFromInt(int64(i + 1)), OccurredAt: base.Add(time.Duration(i) * time.Hour), Reason: "r",
		}))
	}
	err := repos.Operations.Append(ctx, &entity.OperationRecord{ID: "x", Type: entity.OperationTypeReceipt, ProductID: "p1", Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	err = repos.Operations.Append(ctx, &entity.OperationRecord{ID: "y", Type: entity.OperationTypeReceipt, ProductID: "nope", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)

	all, err := repos.Operations.List(ctx, repository.OperationFilter{}, repository.Sort{}, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].OccurredAt.After(all[2].OccurredAt), "por defecto, más recientes primero")

	deductions, err := repos.Operations.List(ctx, repository.OperationFilter{Type: entity.OperationTypeDeduction}, repository.Sort{Field: "quantity"}, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, deductions, 2)
	assert.True(t, deductions[0].Quantity.LessThan(deductions[1].Quantity))

	from := base.Add(90 * time.Minute)
	recent, err := repos.Operations.List(ctx, repository.OperationFilter{From: &from}, repository.Sort{}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	page, err := repos.Operations.List(ctx, repository.OperationFilter{}, repository.Sort{}, repository.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestRunReadOnly_NoVeCommitsPosterioresNiEscribe(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "P1")

	err := store.RunReadOnly(ctx, func(tx appinventory.Repos) error {
		// Otro escritor confirma mientras dura la lectura.
		seedProduct(t, repos, "p2", "P2")
		require.NoError(t, repos.Products.Delete(ctx, "p1"))

		p, err := tx.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.NotNil(t, p)
		p, err = tx.Products.GetByID(ctx, "p2")
		require.NoError(t, err)
		assert.Nil(t, p)

		assert.Error(t, tx.Stock.Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: decimal.NewFromInt(1)}))
		return nil
	})
	require.NoError(t, err)

	p, err := repos.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRun_DescarteNoAfectaElDiarioPublicado(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "P1")
	op := func(id string) *entity.OperationRecord {
		return &entity.OperationRecord{ID: id, ProductID: "p1", Type: entity.OperationTypeReceipt, Quantity: decimal.NewFromInt(1), OccurredAt: time.Now()}
	}
	require.NoError(t, repos.Operations.Append(ctx, op("o1")))

	err := store.Run(ctx, func(tx appinventory.Repos) error {
		require.NoError(t, tx.Operations.Append(ctx, op("o2")))
		return errors.New("rollback")
	})
	require.Error(t, err)
	require.NoError(t, repos.Operations.Append(ctx, op("o3")))

	list, err := repos.Operations.List(ctx, repository.OperationFilter{}, repository.Sort{Field: "occurred_at"}, repository.Page{Limit: 10})
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"o1", "o3"}, ids)
}
