package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/inventory"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func balance(id string, seq int64, q int64, exp string) *entity.LiveBalance {
	return &entity.LiveBalance{
		BatchID:        id,
		BatchNumber:    "L-" + id,
		BatchSeq:       seq,
		Quantity:       qty(q),
		ExpirationDate: day(exp),
	}
}

func TestExpirationDate_SumaVidaUtil(t *testing.T) {
	assert.Equal(t, day("2024-01-31"), inventory.ExpirationDate(day("2024-01-01"), 30))
	// Febrero bisiesto.
	assert.Equal(t, day("2024-03-01"), inventory.ExpirationDate(day("2024-02-28"), 2))
}

func TestResolveShelfLife_OverrideTienePrioridad(t *testing.T) {
	override := 5
	assert.Equal(t, 5, inventory.ResolveShelfLife(30, &override))
	assert.Equal(t, 30, inventory.ResolveShelfLife(30, nil))
}

func TestSortFEFO_VencimientoYOrdenDeCreacion(t *testing.T) {
	list := []*entity.LiveBalance{
		balance("c", 3, 10, "2024-03-01"),
		balance("b", 2, 10, "2024-02-01"),
		balance("a", 1, 10, "2024-02-01"),
	}
	inventory.SortFEFO(list)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].BatchID, list[1].BatchID, list[2].BatchID})
}

func TestAllocateFEFO_SoloPrimerLoteSiAlcanza(t *testing.T) {
	list := []*entity.LiveBalance{
		balance("e3", 3, 100, "2024-04-01"),
		balance("e1", 1, 100, "2024-02-01"),
		balance("e2", 2, 100, "2024-03-01"),
	}
	draws, err := inventory.AllocateFEFO(list, qty(40))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, "e1", draws[0].Balance.BatchID)
	assert.True(t, draws[0].Quantity.Equal(qty(40)))
	assert.True(t, draws[0].Remaining().Equal(qty(60)))
}

func TestAllocateFEFO_ReparteEntreLotes(t *testing.T) {
	list := []*entity.LiveBalance{
		balance("b2", 2, 50, "2024-03-01"),
		balance("b1", 1, 10, "2024-02-01"),
	}
	draws, err := inventory.AllocateFEFO(list, qty(30))
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, "b1", draws[0].Balance.BatchID)
	assert.True(t, draws[0].Quantity.Equal(qty(10)))
	assert.True(t, draws[0].Remaining().IsZero())
	assert.Equal(t, "b2", draws[1].Balance.BatchID)
	assert.True(t, draws[1].Quantity.Equal(qty(20)))
	assert.True(t, inventory.TotalDrawn(draws).Equal(qty(30)))
	// No muta los saldos de entrada.
	assert.True(t, list[1].Quantity.Equal(qty(10)))
}

func TestAllocateFEFO_Errores(t *testing.T) {
	list := []*entity.LiveBalance{balance("a", 1, 10, "2024-02-01")}

	tests := []struct {
		name      string
		balances  []*entity.LiveBalance
		requested decimal.Decimal
		want      error
	}{
		{"cantidad cero", list, decimal.Zero, domain.ErrInvalidQuantity},
		{"cantidad negativa", list, qty(-1), domain.ErrInvalidQuantity},
		{"más de tres decimales", list, decimal.RequireFromString("0.0015"), domain.ErrInvalidQuantity},
		{"sin lotes", nil, qty(1), domain.ErrEmptySelection},
		{"saldo insuficiente", list, qty(11), domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inventory.AllocateFEFO(tt.balances, tt.requested)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateDraws_RechazaSiUnLoteNoAlcanza(t *testing.T) {
	list := []*entity.LiveBalance{
		balance("a", 1, 10, "2024-02-01"),
		balance("b", 2, 5, "2024-03-01"),
	}
	_, err := inventory.ValidateDraws(list, map[string]decimal.Decimal{
		"a": qty(10),
		"b": qty(6),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBatchBalance)

	var balErr *domain.InsufficientBatchBalanceError
	require.True(t, errors.As(err, &balErr))
	assert.Equal(t, "b", balErr.BatchID)
	assert.Equal(t, "L-b", balErr.BatchNumber)
	assert.True(t, balErr.Available.Equal(qty(5)))
}

func TestValidateDraws_IgnoraCerosYOrdenaFEFO(t *testing.T) {
	list := []*entity.LiveBalance{
		balance("b", 2, 5, "2024-03-01"),
		balance("a", 1, 10, "2024-02-01"),
	}
	draws, err := inventory.ValidateDraws(list, map[string]decimal.Decimal{
		"b": qty(5),
		"a": qty(3),
		"x": decimal.Zero,
	})
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, "a", draws[0].Balance.BatchID)
	assert.Equal(t, "b", draws[1].Balance.BatchID)
}

func TestValidateDraws_SeleccionVacia(t *testing.T) {
	list := []*entity.LiveBalance{balance("a", 1, 10, "2024-02-01")}
	_, err := inventory.ValidateDraws(list, map[string]decimal.Decimal{"a": decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	_, err = inventory.ValidateDraws(list, map[string]decimal.Decimal{"a": qty(-2)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestValidateDraws_ErrorDeterministaConVariosLotesExcedidos(t *testing.T) {
	list := []*entity.LiveBalance{
		balance("z", 3, 5, "2024-04-01"),
		balance("m", 2, 5, "2024-01-15"),
		balance("a", 1, 5, "2024-03-01"),
	}
	requested := map[string]decimal.Decimal{"z": qty(9), "m": qty(9), "a": qty(9)}
	// Siempre se informa el lote que vence primero, sea cual sea el orden del mapa.
	for range 20 {
		_, err := inventory.ValidateDraws(list, requested)
		var balErr *domain.InsufficientBatchBalanceError
		require.True(t, errors.As(err, &balErr))
		assert.Equal(t, "m", balErr.BatchID)
	}
}

func TestValidateDraws_RechazaMasDeTresDecimales(t *testing.T) {
	list := []*entity.LiveBalance{balance("a", 1, 10, "2024-02-01")}
	_, err := inventory.ValidateDraws(list, map[string]decimal.Decimal{"a": decimal.RequireFromString("1.0005")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	draws, err := inventory.ValidateDraws(list, map[string]decimal.Decimal{"a": decimal.RequireFromString("1.2500")})
	require.NoError(t, err, "los ceros a la derecha no cuentan como decimales")
	assert.True(t, draws[0].Quantity.Equal(decimal.RequireFromString("1.25")))
}

func TestCheckQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"1", nil},
		{"0.001", nil},
		{"999999999999999.999", nil},
		{"0", domain.ErrInvalidQuantity},
		{"-0.5", domain.ErrInvalidQuantity},
		{"0.0001", domain.ErrInvalidQuantity},
		{"1000000000000000", domain.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := inventory.CheckQuantity(decimal.RequireFromString(tt.in))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplyStockDelta_RespaldoNegativo(t *testing.T) {
	level := &entity.StockLevel{ProductID: "p", Quantity: qty(10)}
	now := time.Now()

	require.NoError(t, inventory.ApplyStockDelta(level, qty(-10), now))
	assert.True(t, level.Quantity.IsZero())

	err := inventory.ApplyStockDelta(level, qty(-1), now)
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.True(t, level.Quantity.IsZero(), "un cambio rechazado no debe modificar el nivel")
}
