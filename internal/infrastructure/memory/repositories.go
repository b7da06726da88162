package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository          = (*materialRepo)(nil)
	_ repository.BatchRepository             = (*batchRepo)(nil)
	_ repository.StockEntryRepository        = (*stockRepo)(nil)
	_ repository.ConsumptionRecordRepository = (*recordRepo)(nil)
	_ repository.OutboundNoteRepository      = (*noteRepo)(nil)
	_ repository.ProductionOrderRepository   = (*orderRepo)(nil)
)

// =============================================================================
// MATERIAS PRIMAS
// =============================================================================

type materialRepo struct{ h handle }

func (r *materialRepo) Create(ctx context.Context, m *entity.Material) error {
	return r.h.write(ctx, func(st *state) error {
		m.ID = r.h.next(&r.h.s.seq.material)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		st.materials[m.ID] = *m
		return nil
	})
}

func (r *materialRepo) GetByID(ctx context.Context, id int64) (*entity.Material, error) {
	var out *entity.Material
	err := r.h.read(ctx, func(st *state) error {
		m, ok := st.materials[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

// =============================================================================
// LOTES
// =============================================================================

type batchRepo struct{ h handle }

func (r *batchRepo) Create(ctx context.Context, b *entity.Batch) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.materials[b.MaterialID]; !ok {
			return domain.ErrNotFound
		}
		if _, dup := st.batchCodes[b.Code]; dup {
			return domain.ErrDuplicate
		}
		b.ID = r.h.next(&r.h.s.seq.batch)
		st.batches[b.ID] = *b
		st.batchCodes[b.Code] = b.ID
		return nil
	})
}

func (r *batchRepo) GetByID(ctx context.Context, id int64) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.h.read(ctx, func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *batchRepo) ListAvailable(ctx context.Context, materialID int64) ([]*entity.Batch, error) {
	return r.ListByMaterial(ctx, materialID, false)
}

func (r *batchRepo) ListByMaterial(ctx context.Context, materialID int64, includeExhausted bool) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.h.read(ctx, func(st *state) error {
		for _, b := range st.batches {
			if b.MaterialID != materialID {
				continue
			}
			if !includeExhausted && b.Exhausted() {
				continue
			}
			out = append(out, &b)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *batchRepo) Decrement(ctx context.Context, batchID int64, amount decimal.Decimal) error {
	if !amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	return r.h.write(ctx, func(st *state) error {
		b, ok := st.batches[batchID]
		if !ok {
			return domain.ErrNotFound
		}
		if b.Quantity.LessThan(amount) {
			b.Quantity = decimal.Zero
			st.batches[batchID] = b
			return domain.ErrConcurrentModification
		}
		b.Quantity = b.Quantity.Sub(amount)
		st.batches[batchID] = b
		return nil
	})
}

func (r *batchRepo) TotalAvailable(ctx context.Context, materialID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.h.read(ctx, func(st *state) error {
		for _, b := range st.batches {
			if b.MaterialID == materialID {
				total = total.Add(b.Quantity)
			}
		}
		return nil
	})
	return total, err
}

// =============================================================================
// STOCK AGREGADO
// =============================================================================

type stockRepo struct{ h handle }

func (r *stockRepo) Get(ctx context.Context, materialID int64) (*entity.StockEntry, error) {
	var out *entity.StockEntry
	err := r.h.read(ctx, func(st *state) error {
		e, ok := st.stock[materialID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloquear la fila: la transacción ya tiene el candado exclusivo.
func (r *stockRepo) GetForUpdate(ctx context.Context, materialID int64) (*entity.StockEntry, error) {
	return r.Get(ctx, materialID)
}

func (r *stockRepo) List(ctx context.Context) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	err := r.h.read(ctx, func(st *state) error {
		for _, e := range st.stock {
			out = append(out, &e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, err
}

func (r *stockRepo) Create(ctx context.Context, e *entity.StockEntry) error {
	return r.h.write(ctx, func(st *state) error {
		m, ok := st.materials[e.MaterialID]
		if !ok {
			return domain.ErrNotFound
		}
		if _, dup := st.stock[e.MaterialID]; dup {
			return domain.ErrDuplicate
		}
		e.ID = r.h.next(&r.h.s.seq.stock)
		if e.MaterialName == "" {
			e.MaterialName = m.Name
		}
		st.stock[e.MaterialID] = *e
		return nil
	})
}

func (r *stockRepo) ApplyDelta(ctx context.Context, materialID int64, delta decimal.Decimal, at time.Time) error {
	return r.update(ctx, materialID, func(e *entity.StockEntry) {
		e.Quantity = decimal.Max(e.Quantity.Add(delta), decimal.Zero)
		e.UpdatedAt = at
	})
}

func (r *stockRepo) SetQuantity(ctx context.Context, materialID int64, quantity decimal.Decimal, at time.Time) error {
	return r.update(ctx, materialID, func(e *entity.StockEntry) {
		e.Quantity = decimal.Max(quantity, decimal.Zero)
		e.UpdatedAt = at
	})
}

func (r *stockRepo) SetMinimumThreshold(ctx context.Context, materialID int64, threshold decimal.Decimal, at time.Time) error {
	return r.update(ctx, materialID, func(e *entity.StockEntry) {
		e.MinimumThreshold = threshold
		e.UpdatedAt = at
	})
}

func (r *stockRepo) update(ctx context.Context, materialID int64, fn func(e *entity.StockEntry)) error {
	return r.h.write(ctx, func(st *state) error {
		e, ok := st.stock[materialID]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&e)
		st.stock[materialID] = e
		return nil
	})
}

// =============================================================================
// TRAZABILIDAD (solo inserción)
// =============================================================================

type recordRepo struct{ h handle }

func (r *recordRepo) Append(ctx context.Context, rec *entity.ConsumptionRecord) error {
	if !rec.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.batches[rec.BatchID]; !ok {
			return domain.ErrNotFound
		}
		rec.ID = r.h.next(&r.h.s.seq.record)
		st.records = append(st.records, *rec)
		return nil
	})
}

func (r *recordRepo) List(ctx context.Context, f repository.HistoryFilter) ([]*entity.ConsumptionRecord, error) {
	var out []*entity.ConsumptionRecord
	err := r.h.read(ctx, func(st *state) error {
		for _, rec := range st.records {
			if matches(rec, f) {
				out = append(out, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ConsumedAt.Equal(out[j].ConsumedAt) {
			return out[i].ConsumedAt.After(out[j].ConsumedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset >= len(out) {
		return []*entity.ConsumptionRecord{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *recordRepo) SumConsumedSince(ctx context.Context, materialID int64, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.h.read(ctx, func(st *state) error {
		for _, rec := range st.records {
			if rec.MaterialID == materialID && !rec.ConsumedAt.Before(since) {
				total = total.Add(rec.Quantity)
			}
		}
		return nil
	})
	return total, err
}

func matches(rec entity.ConsumptionRecord, f repository.HistoryFilter) bool {
	switch {
	case f.OperationKind != "":
		return rec.OperationKind == f.OperationKind && rec.OperationID == f.OperationID
	case f.BatchID != 0:
		return rec.BatchID == f.BatchID
	case f.MaterialID != 0:
		return rec.MaterialID == f.MaterialID
	}
	return true
}

// =============================================================================
// NOTAS DE SALIDA
// =============================================================================

type noteRepo struct{ h handle }

func (r *noteRepo) Create(ctx context.Context, n *entity.OutboundNote) error {
	return r.h.write(ctx, func(st *state) error {
		if _, dup := st.noteCodes[n.Code]; dup {
			return domain.ErrDuplicate
		}
		n.ID = r.h.next(&r.h.s.seq.note)
		stored := *n
		stored.Lines = nil
		st.notes[n.ID] = stored
		st.noteCodes[n.Code] = n.ID
		return nil
	})
}

func (r *noteRepo) AddLine(ctx context.Context, l *entity.OutboundNoteLine) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.notes[l.NoteID]; !ok {
			return domain.ErrNotFound
		}
		l.ID = r.h.next(&r.h.s.seq.line)
		st.noteLines = append(st.noteLines, *l)
		return nil
	})
}

func (r *noteRepo) GetByID(ctx context.Context, id int64) (*entity.OutboundNote, error) {
	var out *entity.OutboundNote
	err := r.h.read(ctx, func(st *state) error {
		n, ok := st.notes[id]
		if !ok {
			return domain.ErrNotFound
		}
		for _, l := range st.noteLines {
			if l.NoteID == id {
				n.Lines = append(n.Lines, l)
			}
		}
		out = &n
		return nil
	})
	return out, err
}

// =============================================================================
// ÓRDENES DE PRODUCCIÓN
// =============================================================================

type orderRepo struct{ h handle }

func (r *orderRepo) Create(ctx context.Context, o *entity.ProductionOrder) error {
	return r.h.write(ctx, func(st *state) error {
		if _, dup := st.orderCodes[o.Code]; dup {
			return domain.ErrDuplicate
		}
		o.ID = r.h.next(&r.h.s.seq.order)
		st.orders[o.ID] = *o
		st.orderCodes[o.Code] = o.ID
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*entity.ProductionOrder, error) {
	var out *entity.ProductionOrder
	err := r.h.read(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &o
		return nil
	})
	return out, err
}
