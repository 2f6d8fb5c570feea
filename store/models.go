package store

import (
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is a processed upload together with any e-invoice QR metadata.
type Invoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileName    string
	FileType    string
	RawText     string `gorm:"type:text"`
	SellerGSTIN string
	BuyerGSTIN  string
	DocNo       string
	DocType     string
	DocDate     string
	TotalValue  float64
	ItemCount   int
	MainHSNCode string
	IRN         string    `gorm:"index"`
	Items       []Item    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"index"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Item is one classified line item. Position keeps the extraction order.
type Item struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;index"`
	Position     int
	Description  string `gorm:"column:item"`
	Qty          float64
	UnitPrice    float64
	Total        float64
	HSNCode      string `gorm:"index"`
	GSTRate      float64
	ClassifiedBy string
	CreatedAt    time.Time
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// GstSlab is a row of the HSN reference table.
type GstSlab struct {
	HSNCode     string `gorm:"primaryKey"`
	Description string
	GSTRate     float64
}

func newInvoiceModel(inv *dto.Invoice, items []dto.ClassifiedItem) *Invoice {
	m := &Invoice{
		FileName:  inv.FileName,
		FileType:  inv.FileType,
		RawText:   inv.RawText,
		CreatedAt: inv.CreatedAt,
	}
	if inv.ID != "" {
		if id, err := uuid.Parse(inv.ID); err == nil {
			m.ID = id
		}
	}
	if e := inv.EInvoice; e != nil {
		m.SellerGSTIN = e.SellerGSTIN
		m.BuyerGSTIN = e.BuyerGSTIN
		m.DocNo = e.DocNo
		m.DocType = e.DocType
		m.DocDate = e.DocDate
		m.TotalValue = e.TotalValue
		m.ItemCount = e.ItemCount
		m.MainHSNCode = e.MainHSNCode
		m.IRN = e.IRN
	}
	for pos, it := range items {
		m.Items = append(m.Items, Item{
			Position:     pos,
			Description:  it.Item,
			Qty:          it.Qty,
			UnitPrice:    it.UnitPrice,
			Total:        it.Total,
			HSNCode:      it.HSNCode,
			GSTRate:      it.GSTRate,
			ClassifiedBy: it.ClassifiedBy,
		})
	}
	return m
}

func (i *Invoice) toDTO() dto.Invoice {
	out := dto.Invoice{
		ID:        i.ID.String(),
		FileName:  i.FileName,
		FileType:  i.FileType,
		RawText:   i.RawText,
		CreatedAt: i.CreatedAt,
	}
	if i.IRN != "" || i.SellerGSTIN != "" {
		out.EInvoice = &dto.EInvoiceData{
			SellerGSTIN: i.SellerGSTIN,
			BuyerGSTIN:  i.BuyerGSTIN,
			DocNo:       i.DocNo,
			DocType:     i.DocType,
			DocDate:     i.DocDate,
			TotalValue:  i.TotalValue,
			ItemCount:   i.ItemCount,
			MainHSNCode: i.MainHSNCode,
			IRN:         i.IRN,
		}
	}
	for _, it := range i.Items {
		out.Items = append(out.Items, it.toDTO())
	}
	return out
}

func (i *Item) toDTO() dto.StoredItem {
	return dto.StoredItem{
		ID:        i.ID.String(),
		InvoiceID: i.InvoiceID.String(),
		ClassifiedItem: dto.ClassifiedItem{
			CandidateItem: dto.CandidateItem{
				Item:      i.Description,
				Qty:       i.Qty,
				UnitPrice: i.UnitPrice,
				Total:     i.Total,
			},
			HSNCode:      i.HSNCode,
			GSTRate:      i.GSTRate,
			ClassifiedBy: i.ClassifiedBy,
		},
		CreatedAt: i.CreatedAt,
	}
}

// applyUpdate copies the non-nil fields of req onto the item.
func (i *Item) applyUpdate(req dto.UpdateItemRequest) {
	if req.Item != nil {
		i.Description = *req.Item
	}
	if req.Qty != nil {
		i.Qty = *req.Qty
	}
	if req.UnitPrice != nil {
		i.UnitPrice = *req.UnitPrice
	}
	if req.Total != nil {
		i.Total = *req.Total
	}
	if req.HSNCode != nil {
		i.HSNCode = *req.HSNCode
	}
	if req.GSTRate != nil {
		i.GSTRate = *req.GSTRate
	}
	i.ClassifiedBy = dto.SourceManual
}
