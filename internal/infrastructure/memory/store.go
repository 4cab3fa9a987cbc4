// Package memory implementa los repositorios del libro de inventario en memoria.
// Un solo escritor a la vez: Run trabaja sobre una copia del estado y la publica solo si fn no falla,
// de modo que un error deja el estado intacto (rollback). Un estado publicado no se modifica nunca,
// así que los lectores pueden quedarse con él como snapshot. Se usa en tests y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	appinventory "github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
)

var _ appinventory.TxRunner = (*Store)(nil)

type state struct {
	products map[string]entity.Product
	batches  map[string]entity.Batch
	balances map[string]entity.LiveBalance // por batch_id
	stock    map[string]entity.StockLevel  // por product_id
	// owned marca qué mapas ya son propios de esta versión; el resto se comparte con la anterior
	// y se copia en la primera escritura (ver own*).
	owned uint8
	// operations solo crece: los estados comparten el arreglo y cada uno ve su propio largo.
	// Quien necesite modificar una entrada existente la copia antes (detachBatch).
	operations []entity.OperationRecord
	batchSeq   int64
	opSeq      int64
}

const (
	ownProducts uint8 = 1 << iota
	ownBatches
	ownBalances
	ownStock
	ownAll = ownProducts | ownBatches | ownBalances | ownStock
)

func newState() *state {
	return &state{
		products: map[string]entity.Product{},
		batches:  map[string]entity.Batch{},
		balances: map[string]entity.LiveBalance{},
		stock:    map[string]entity.StockLevel{},
		owned:    ownAll,
	}
}

// clone es O(1): comparte todo con s hasta que una escritura pida su mapa.
func (s *state) clone() *state {
	c := *s
	c.owned = 0
	return &c
}

func (s *state) ownProducts() map[string]entity.Product {
	if s.owned&ownProducts == 0 {
		s.products = maps.Clone(s.products)
		s.owned |= ownProducts
	}
	return s.products
}

func (s *state) ownBatches() map[string]entity.Batch {
	if s.owned&ownBatches == 0 {
		s.batches = maps.Clone(s.batches)
		s.owned |= ownBatches
	}
	return s.batches
}

func (s *state) ownBalances() map[string]entity.LiveBalance {
	if s.owned&ownBalances == 0 {
		s.balances = maps.Clone(s.balances)
		s.owned |= ownBalances
	}
	return s.balances
}

func (s *state) ownStock() map[string]entity.StockLevel {
	if s.owned&ownStock == 0 {
		s.stock = maps.Clone(s.stock)
		s.owned |= ownStock
	}
	return s.stock
}

// detachBatch deja en nil el lote de sus operaciones (ON DELETE SET NULL), copiando el diario
// para no tocar el arreglo que ven otros estados.
func (s *state) detachBatch(batchID string) {
	ops := make([]entity.OperationRecord, len(s.operations))
	copy(ops, s.operations)
	for i := range ops {
		if ops[i].BatchID != nil && *ops[i].BatchID == batchID {
			ops[i].BatchID = nil
		}
	}
	s.operations = ops
}

var errReadOnly = errors.New("memory: escritura dentro de RunReadOnly")

// access abstrae cómo un repositorio llega al estado: con los locks del Store o dentro de una tx.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

// Store estado en memoria protegido por un RWMutex.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

type storeAccess struct{ s *Store }

func (a storeAccess) read(fn func(st *state) error) error {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(a.s.st)
}

func (a storeAccess) write(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	// Una escritura suelta también es atómica: se aplica sobre una copia.
	work := a.s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	a.s.st = work
	return nil
}

// snapshotAccess lee un estado publicado; no admite escrituras.
type snapshotAccess struct{ st *state }

func (a snapshotAccess) read(fn func(st *state) error) error { return fn(a.st) }
func (a snapshotAccess) write(func(st *state) error) error   { return errReadOnly }

// txAccess opera directo sobre la copia de trabajo; Run ya tiene el lock de escritura.
type txAccess struct{ st *state }

func (a txAccess) read(fn func(st *state) error) error  { return fn(a.st) }
func (a txAccess) write(fn func(st *state) error) error { return fn(a.st) }

// Run ejecuta fn con repositorios atados a una copia del estado. Commit si fn devuelve nil; si no, se descarta.
func (s *Store) Run(ctx context.Context, fn func(repos appinventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(reposFor(txAccess{st: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// RunReadOnly ejecuta fn sobre el estado publicado en este momento, sin retener locks:
// los escritores pueden confirmar mientras fn corre y fn no los ve.
func (s *Store) RunReadOnly(ctx context.Context, fn func(repos appinventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.st
	s.mu.RUnlock()
	return fn(reposFor(snapshotAccess{st: snapshot}))
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma su propio lock).
func (s *Store) Repos() appinventory.Repos {
	return reposFor(storeAccess{s: s})
}

func reposFor(a access) appinventory.Repos {
	return appinventory.Repos{
		Products:   &ProductRepo{a: a},
		Batches:    &BatchRepo{a: a},
		Balances:   &LiveBalanceRepo{a: a},
		Stock:      &StockRepo{a: a},
		Operations: &OperationRepo{a: a},
	}
}
