package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository persists invoices, items and the HSN reference table in
// Postgres.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CreateInvoice stores the invoice and its items in one transaction.
func (r *GormRepository) CreateInvoice(ctx context.Context, inv *dto.Invoice, items []dto.ClassifiedItem) (*dto.Invoice, error) {
	m := newInvoiceModel(inv, items)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	out := m.toDTO()
	return &out, nil
}

func (r *GormRepository) GetInvoice(ctx context.Context, id string) (*dto.Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, dto.ErrInvoiceNotFound
	}

	var m Invoice
	err = r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&m, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dto.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	out := m.toDTO()
	return &out, nil
}

// ListInvoices returns invoices newest first, without items or raw text.
func (r *GormRepository) ListInvoices(ctx context.Context) ([]dto.Invoice, error) {
	var rows []Invoice
	err := r.db.WithContext(ctx).
		Omit("raw_text").
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoicesToDTO(rows), nil
}

// ListInvoicesWithItems returns every invoice with its items, oldest first.
func (r *GormRepository) ListInvoicesWithItems(ctx context.Context) ([]dto.Invoice, error) {
	var rows []Invoice
	err := r.db.WithContext(ctx).
		Omit("raw_text").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoicesToDTO(rows), nil
}

func (r *GormRepository) ItemsByInvoice(ctx context.Context, invoiceID string) ([]dto.StoredItem, error) {
	uid, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, dto.ErrInvoiceNotFound
	}

	var rows []Item
	if err := r.db.WithContext(ctx).Where("invoice_id = ?", uid).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return itemsToDTO(rows), nil
}

func (r *GormRepository) AllItems(ctx context.Context) ([]dto.StoredItem, error) {
	var rows []Item
	if err := r.db.WithContext(ctx).Order("created_at, position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return itemsToDTO(rows), nil
}

// UpdateItem applies a manual correction and marks the item as such.
func (r *GormRepository) UpdateItem(ctx context.Context, id string, req dto.UpdateItemRequest) (*dto.StoredItem, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, dto.ErrItemNotFound
	}

	var m Item
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", uid).Error; err != nil {
			return err
		}
		m.applyUpdate(req)
		return tx.Save(&m).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dto.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	out := m.toDTO()
	return &out, nil
}

func (r *GormRepository) ListGstSlabs(ctx context.Context) ([]dto.HsnEntry, error) {
	var rows []GstSlab
	if err := r.db.WithContext(ctx).Order("hsn_code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load gst slabs: %w", err)
	}
	out := make([]dto.HsnEntry, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.HsnEntry{HSNCode: s.HSNCode, Description: s.Description, GSTRate: s.GSTRate})
	}
	return out, nil
}

// SeedGstSlabs inserts reference rows, keeping rows that already exist.
func (r *GormRepository) SeedGstSlabs(ctx context.Context, entries []dto.HsnEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]GstSlab, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, GstSlab{HSNCode: e.HSNCode, Description: e.Description, GSTRate: e.GSTRate})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hsn_code"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to seed gst slabs: %w", err)
	}
	return nil
}

func invoicesToDTO(rows []Invoice) []dto.Invoice {
	out := make([]dto.Invoice, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out
}

func itemsToDTO(rows []Item) []dto.StoredItem {
	out := make([]dto.StoredItem, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out
}
