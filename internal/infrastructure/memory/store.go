// Package memory implementa los puertos del ledger en memoria, con transacciones reales
// (commit/rollback y savepoints) para tests y DB_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store guarda el estado completo del ledger. Una transacción de nivel superior toma el
// candado exclusivo durante toda su duración: las transacciones quedan serializadas.
type Store struct {
	mu    sync.RWMutex
	state *state
	seq   sequences
}

// sequences no se restauran en rollback, igual que las secuencias de PostgreSQL.
type sequences struct {
	material, batch, stock, record, note, line, order int64
}

type state struct {
	materials  map[int64]entity.Material
	batches    map[int64]entity.Batch
	batchCodes map[string]int64
	stock      map[int64]entity.StockEntry // por material
	records    []entity.ConsumptionRecord
	notes      map[int64]entity.OutboundNote
	noteCodes  map[string]int64
	noteLines  []entity.OutboundNoteLine
	orders     map[int64]entity.ProductionOrder
	orderCodes map[string]int64
}

func newState() *state {
	return &state{
		materials:  make(map[int64]entity.Material),
		batches:    make(map[int64]entity.Batch),
		batchCodes: make(map[string]int64),
		stock:      make(map[int64]entity.StockEntry),
		notes:      make(map[int64]entity.OutboundNote),
		noteCodes:  make(map[string]int64),
		orders:     make(map[int64]entity.ProductionOrder),
		orderCodes: make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		materials:  make(map[int64]entity.Material, len(s.materials)),
		batches:    make(map[int64]entity.Batch, len(s.batches)),
		batchCodes: make(map[string]int64, len(s.batchCodes)),
		stock:      make(map[int64]entity.StockEntry, len(s.stock)),
		records:    append([]entity.ConsumptionRecord(nil), s.records...),
		notes:      make(map[int64]entity.OutboundNote, len(s.notes)),
		noteCodes:  make(map[string]int64, len(s.noteCodes)),
		noteLines:  append([]entity.OutboundNoteLine(nil), s.noteLines...),
		orders:     make(map[int64]entity.ProductionOrder, len(s.orders)),
		orderCodes: make(map[string]int64, len(s.orderCodes)),
	}
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for k, v := range s.batches {
		c.batches[k] = v
	}
	for k, v := range s.batchCodes {
		c.batchCodes[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.noteCodes {
		c.noteCodes[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderCodes {
		c.orderCodes[k] = v
	}
	return c
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey{}).(*Store)
	return ok && tx == s
}

// Run ejecuta fn en una transacción. Si ctx ya lleva una transacción de este store,
// fn corre en un savepoint: si falla se restaura solo lo hecho dentro de fn.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if s.inTx(ctx) {
		savepoint := s.state.clone()
		committed := false
		defer func() {
			if !committed {
				s.state = savepoint
			}
		}()
		if err := fn(ctx, s.repos(true)); err != nil {
			return err
		}
		committed = true
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snapshot := s.state.clone()
	committed := false
	defer func() {
		if !committed {
			s.state = snapshot
		}
		s.mu.Unlock()
	}()

	txCtx := context.WithValue(ctx, txKey{}, s)
	if err := fn(txCtx, s.repos(true)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Repos() inventory.Repos {
	return s.repos(false)
}

func (s *Store) repos(tx bool) inventory.Repos {
	h := handle{s: s, tx: tx}
	return inventory.Repos{
		Materials: &materialRepo{h},
		Batches:   &batchRepo{h},
		Stock:     &stockRepo{h},
		Records:   &recordRepo{h},
		Notes:     &noteRepo{h},
		Orders:    &orderRepo{h},
	}
}

// handle decide si hay que tomar el candado: dentro de una transacción ya está tomado.
type handle struct {
	s  *Store
	tx bool
}

func (h handle) read(ctx context.Context, fn func(st *state) error) error {
	if h.tx || h.s.inTx(ctx) {
		return fn(h.s.state)
	}
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	return fn(h.s.state)
}

func (h handle) write(ctx context.Context, fn func(st *state) error) error {
	if h.tx || h.s.inTx(ctx) {
		return fn(h.s.state)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	snapshot := h.s.state.clone()
	if err := fn(h.s.state); err != nil {
		h.s.state = snapshot
		return err
	}
	return nil
}

func (h handle) next(counter *int64) int64 {
	*counter++
	return *counter
}
