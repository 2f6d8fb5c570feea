package gst

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

// HsnTable is the immutable HSN reference set used for matching. It is
// safe for concurrent use.
type HsnTable struct {
	entries []dto.HsnEntry
}

func NewHsnTable(entries []dto.HsnEntry) *HsnTable {
	cp := make([]dto.HsnEntry, len(entries))
	copy(cp, entries)
	return &HsnTable{entries: cp}
}

// Entries returns a copy of the reference rows in load order.
func (t *HsnTable) Entries() []dto.HsnEntry {
	cp := make([]dto.HsnEntry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

func (t *HsnTable) Len() int {
	return len(t.entries)
}

// FallbackEntries is the built-in minimal reference set used when no
// other source is available.
func FallbackEntries() []dto.HsnEntry {
	return []dto.HsnEntry{
		{HSNCode: "1905", Description: "Bread, pastry, cakes, biscuits", GSTRate: 18},
		{HSNCode: "2106", Description: "Food preparations", GSTRate: 18},
		{HSNCode: "3004", Description: "Medicaments", GSTRate: 12},
		{HSNCode: "3304", Description: "Beauty or make-up preparations", GSTRate: 28},
		{HSNCode: "3401", Description: "Soap, organic surface-active products", GSTRate: 18},
		{HSNCode: "3402", Description: "Washing and cleaning preparations", GSTRate: 18},
		{HSNCode: "3923", Description: "Plastic articles for packaging", GSTRate: 18},
		{HSNCode: "4819", Description: "Cartons, boxes, cases, bags of paper", GSTRate: 18},
		{HSNCode: "8415", Description: "Air conditioning machines", GSTRate: 28},
		{HSNCode: "8508", Description: "Vacuum cleaners", GSTRate: 28},
		{HSNCode: "8516", Description: "Electric heating equipment", GSTRate: 28},
		{HSNCode: "8517", Description: "Telephones, smartphones", GSTRate: 18},
		{HSNCode: "8528", Description: "Monitors and projectors, TV receivers", GSTRate: 28},
	}
}

// SlabSource is persistent storage for the reference table.
type SlabSource interface {
	ListGstSlabs(ctx context.Context) ([]dto.HsnEntry, error)
	SeedGstSlabs(ctx context.Context, entries []dto.HsnEntry) error
}

// LoadHsnTable builds the reference table from the store, then the CSV
// file, then the built-in set. It never fails. When the built-in set is
// used it is written back to csvPath and seeded into the store. src may
// be nil.
func LoadHsnTable(ctx context.Context, src SlabSource, csvPath string) *HsnTable {
	if src != nil {
		entries, err := src.ListGstSlabs(ctx)
		if err != nil {
			log.Printf("Failed to load GST slabs from database: %v", err)
		} else if len(entries) > 0 {
			log.Printf("Loaded %d HSN entries from database", len(entries))
			return NewHsnTable(entries)
		}
	}

	if csvPath != "" {
		entries, err := LoadHsnCSV(csvPath)
		switch {
		case err == nil && len(entries) > 0:
			log.Printf("Loaded %d HSN entries from %s", len(entries), csvPath)
			seed(ctx, src, entries)
			return NewHsnTable(entries)
		case err != nil && !errors.Is(err, os.ErrNotExist):
			log.Printf("Failed to read HSN data file %s: %v", csvPath, err)
		}
	}

	entries := FallbackEntries()
	log.Printf("Using built-in HSN reference set (%d entries)", len(entries))
	if csvPath != "" {
		if err := WriteHsnCSV(csvPath, entries); err != nil {
			log.Printf("Failed to write HSN data file %s: %v", csvPath, err)
		}
	}
	seed(ctx, src, entries)
	return NewHsnTable(entries)
}

func seed(ctx context.Context, src SlabSource, entries []dto.HsnEntry) {
	if src == nil {
		return
	}
	if err := src.SeedGstSlabs(ctx, entries); err != nil {
		log.Printf("Failed to seed GST slabs: %v", err)
	}
}

// LoadHsnCSV reads hsn_code,description,gst_rate rows. A header row is
// skipped; rows with a bad rate are skipped.
func LoadHsnCSV(path string) ([]dto.HsnEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadHsnCSV(f)
}

func ReadHsnCSV(r io.Reader) ([]dto.HsnEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse HSN CSV: %w", err)
	}

	var entries []dto.HsnEntry
	for i, rec := range records {
		if len(rec) < 3 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "hsn_code") {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			log.Printf("Skipping HSN row %d: invalid gst_rate %q", i+1, rec[2])
			continue
		}
		entries = append(entries, dto.HsnEntry{
			HSNCode:     strings.TrimSpace(rec[0]),
			Description: strings.TrimSpace(rec[1]),
			GSTRate:     rate,
		})
	}
	return entries, nil
}

func WriteHsnCSV(path string, entries []dto.HsnEntry) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create HSN CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"hsn_code", "description", "gst_rate"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.HSNCode, e.Description, strconv.FormatFloat(e.GSTRate, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
