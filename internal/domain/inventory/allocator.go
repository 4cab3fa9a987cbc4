package inventory

import (
	"sort"

	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Draw es la cantidad a descontar de un lote concreto.
type Draw struct {
	Balance  *entity.LiveBalance
	Quantity decimal.Decimal
}

// Remaining devuelve el saldo del lote después de aplicar el descuento.
func (d Draw) Remaining() decimal.Decimal {
	return d.Balance.Quantity.Sub(d.Quantity)
}

// SortFEFO ordena los saldos vivos por vencimiento ascendente (primero en vencer, primero en salir);
// los empates se resuelven por orden de creación del lote.
func SortFEFO(balances []*entity.LiveBalance) {
	sort.SliceStable(balances, func(i, j int) bool {
		return fefoLess(balances[i], balances[j])
	})
}

func fefoLess(a, b *entity.LiveBalance) bool {
	if !a.ExpirationDate.Equal(b.ExpirationDate) {
		return a.ExpirationDate.Before(b.ExpirationDate)
	}
	return a.BatchSeq < b.BatchSeq
}

// AllocateFEFO reparte requested entre los lotes en orden FEFO, tomando de cada uno
// min(pendiente, saldo). No muta los saldos.
//   - requested <= 0 o con más de QuantityScale decimales → ErrInvalidQuantity
//   - sin lotes con saldo → ErrEmptySelection
//   - saldo total insuficiente → ErrInsufficientStock
func AllocateFEFO(balances []*entity.LiveBalance, requested decimal.Decimal) ([]Draw, error) {
	if err := CheckQuantity(requested); err != nil {
		return nil, err
	}
	ordered := make([]*entity.LiveBalance, 0, len(balances))
	for _, b := range balances {
		if b.Quantity.IsPositive() {
			ordered = append(ordered, b)
		}
	}
	if len(ordered) == 0 {
		return nil, domain.ErrEmptySelection
	}
	if SumBalances(ordered).LessThan(requested) {
		return nil, domain.ErrInsufficientStock
	}
	SortFEFO(ordered)

	pending := requested
	draws := make([]Draw, 0, len(ordered))
	for _, b := range ordered {
		if !pending.IsPositive() {
			break
		}
		qty := decimal.Min(pending, b.Quantity)
		draws = append(draws, Draw{Balance: b, Quantity: qty})
		pending = pending.Sub(qty)
	}
	return draws, nil
}

// ValidateDraws valida una selección explícita por lote (batchID → cantidad) contra los saldos vivos
// del producto. Valida todo antes de aplicar nada: si algún lote no alcanza, la baja completa se rechaza.
// Las cantidades en cero se ignoran; el resultado sale en orden FEFO. Los errores no dependen del
// orden del mapa: cantidades y lotes desconocidos se revisan por ID, los saldos en orden FEFO.
func ValidateDraws(balances []*entity.LiveBalance, requested map[string]decimal.Decimal) ([]Draw, error) {
	ids := make([]string, 0, len(requested))
	for batchID, qty := range requested {
		if !qty.IsZero() {
			ids = append(ids, batchID)
		}
	}
	if len(ids) == 0 {
		return nil, domain.ErrEmptySelection
	}
	sort.Strings(ids)
	for _, batchID := range ids {
		if err := CheckQuantity(requested[batchID]); err != nil {
			return nil, err
		}
	}

	byBatch := make(map[string]*entity.LiveBalance, len(balances))
	for _, b := range balances {
		byBatch[b.BatchID] = b
	}
	for _, batchID := range ids {
		if _, ok := byBatch[batchID]; !ok {
			return nil, &domain.InsufficientBatchBalanceError{
				BatchID:   batchID,
				Available: decimal.Zero,
				Requested: requested[batchID],
			}
		}
	}

	ordered := make([]*entity.LiveBalance, 0, len(ids))
	for _, batchID := range ids {
		ordered = append(ordered, byBatch[batchID])
	}
	SortFEFO(ordered)

	draws := make([]Draw, 0, len(ordered))
	for _, b := range ordered {
		qty := requested[b.BatchID]
		if qty.GreaterThan(b.Quantity) {
			return nil, &domain.InsufficientBatchBalanceError{
				BatchID:     b.BatchID,
				BatchNumber: b.BatchNumber,
				Available:   b.Quantity,
				Requested:   qty,
			}
		}
		draws = append(draws, Draw{Balance: b, Quantity: qty})
	}
	return draws, nil
}

// TotalDrawn suma las cantidades de los descuentos.
func TotalDrawn(draws []Draw) decimal.Decimal {
	total := decimal.Zero
	for _, d := range draws {
		total = total.Add(d.Quantity)
	}
	return total
}
