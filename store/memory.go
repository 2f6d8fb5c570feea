package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/google/uuid"
)

// MemoryRepository keeps everything in process memory. It is used when no
// DATABASE_URL is configured and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*Invoice
	items    map[uuid.UUID]*Item
	slabs    map[string]GstSlab
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		invoices: make(map[uuid.UUID]*Invoice),
		items:    make(map[uuid.UUID]*Item),
		slabs:    make(map[string]GstSlab),
		now:      time.Now,
	}
}

func (r *MemoryRepository) CreateInvoice(_ context.Context, inv *dto.Invoice, items []dto.ClassifiedItem) (*dto.Invoice, error) {
	m := newInvoiceModel(inv, items)
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = r.now()
	if !inv.CreatedAt.IsZero() {
		m.CreatedAt = inv.CreatedAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range m.Items {
		it := &m.Items[i]
		it.ID = uuid.New()
		it.InvoiceID = m.ID
		it.CreatedAt = m.CreatedAt
		cp := *it
		r.items[it.ID] = &cp
	}
	r.invoices[m.ID] = m

	out := m.toDTO()
	return &out, nil
}

func (r *MemoryRepository) GetInvoice(_ context.Context, id string) (*dto.Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, dto.ErrInvoiceNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.invoices[uid]
	if !ok {
		return nil, dto.ErrInvoiceNotFound
	}
	inv := r.withItems(m)
	out := inv.toDTO()
	return &out, nil
}

func (r *MemoryRepository) ListInvoices(_ context.Context) ([]dto.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sortedInvoices()
	out := make([]dto.Invoice, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		inv := *rows[i]
		inv.RawText = ""
		inv.Items = nil
		out = append(out, inv.toDTO())
	}
	return out, nil
}

func (r *MemoryRepository) ListInvoicesWithItems(_ context.Context) ([]dto.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sortedInvoices()
	out := make([]dto.Invoice, 0, len(rows))
	for _, m := range rows {
		inv := r.withItems(m)
		inv.RawText = ""
		out = append(out, inv.toDTO())
	}
	return out, nil
}

func (r *MemoryRepository) ItemsByInvoice(_ context.Context, invoiceID string) ([]dto.StoredItem, error) {
	uid, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, dto.ErrInvoiceNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.invoices[uid]
	if !ok {
		return []dto.StoredItem{}, nil
	}
	return itemsToDTO(r.withItems(m).Items), nil
}

func (r *MemoryRepository) AllItems(_ context.Context) ([]dto.StoredItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []Item
	for _, m := range r.sortedInvoices() {
		rows = append(rows, r.withItems(m).Items...)
	}
	return itemsToDTO(rows), nil
}

func (r *MemoryRepository) UpdateItem(_ context.Context, id string, req dto.UpdateItemRequest) (*dto.StoredItem, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, dto.ErrItemNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[uid]
	if !ok {
		return nil, dto.ErrItemNotFound
	}
	it.applyUpdate(req)
	out := it.toDTO()
	return &out, nil
}

func (r *MemoryRepository) ListGstSlabs(_ context.Context) ([]dto.HsnEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dto.HsnEntry, 0, len(r.slabs))
	for _, s := range r.slabs {
		out = append(out, dto.HsnEntry{HSNCode: s.HSNCode, Description: s.Description, GSTRate: s.GSTRate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HSNCode < out[j].HSNCode })
	return out, nil
}

func (r *MemoryRepository) SeedGstSlabs(_ context.Context, entries []dto.HsnEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		if _, exists := r.slabs[e.HSNCode]; exists {
			continue
		}
		r.slabs[e.HSNCode] = GstSlab{HSNCode: e.HSNCode, Description: e.Description, GSTRate: e.GSTRate}
	}
	return nil
}

// withItems returns a copy of m carrying the current state of its items.
// Callers hold r.mu.
func (r *MemoryRepository) withItems(m *Invoice) Invoice {
	inv := *m
	inv.Items = make([]Item, 0, len(m.Items))
	for _, it := range m.Items {
		if cur, ok := r.items[it.ID]; ok {
			inv.Items = append(inv.Items, *cur)
		}
	}
	return inv
}

// sortedInvoices returns invoices oldest first. Callers hold r.mu.
func (r *MemoryRepository) sortedInvoices() []*Invoice {
	rows := make([]*Invoice, 0, len(r.invoices))
	for _, m := range r.invoices {
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID.String() < rows[j].ID.String()
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows
}
