package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"contentcheckout/internal/domain"
)

type ContentWriter interface {
	Upsert(ctx context.Context, c domain.Content) (*domain.Content, error)
}

// CSVImporter reads content catalog exports and inserts/updates content by key.
//
// Recognized columns: id, key, title, price (decimal, e.g. 1.99) or
// price_cents, currency. Unknown columns are ignored.
type CSVImporter struct {
	reader *csv.Reader
	repo   ContentWriter
}

func NewCSVImporter(r io.Reader, repo ContentWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, repo: repo}
}

type csvRow struct {
	line     int
	ID       string
	Key      string
	Title    string
	Price    string
	Cents    string
	Currency string
}

// Run parses CSV rows and upserts one content item per row. It stops at the
// first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("missing key column")
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Title == "" || row.Currency == "" {
		return fmt.Errorf("line %d: invalid content row (missing required fields) for key %q", row.line, row.Key)
	}
	if row.ID != "" && len(row.ID) != 36 {
		return fmt.Errorf("line %d: invalid id for key %q: %s", row.line, row.Key, row.ID)
	}
	cents, err := row.priceCents()
	if err != nil {
		return fmt.Errorf("line %d: key %q: %w", row.line, row.Key, err)
	}

	c := domain.Content{
		ID:         row.ID,
		Key:        row.Key,
		Title:      row.Title,
		PriceCents: cents,
		Currency:   strings.ToUpper(row.Currency),
	}
	if _, err := i.repo.Upsert(ctx, c); err != nil {
		return fmt.Errorf("upsert content %q: %w", row.Key, err)
	}
	return nil
}

func (r *csvRow) priceCents() (int64, error) {
	switch {
	case r.Cents != "":
		cents, err := strconv.ParseInt(r.Cents, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price_cents %q", r.Cents)
		}
		return cents, nil
	case r.Price != "":
		d, err := decimal.NewFromString(r.Price)
		if err != nil || d.IsNegative() {
			return 0, fmt.Errorf("invalid price %q", r.Price)
		}
		scaled := d.Shift(2)
		if !scaled.IsInteger() {
			return 0, fmt.Errorf("price %q has sub-cent precision", r.Price)
		}
		return scaled.IntPart(), nil
	}
	return 0, errors.New("missing price")
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      pick(record, index, "key"),
		Title:    pick(record, index, "title"),
		Price:    pick(record, index, "price"),
		Cents:    pick(record, index, "price_cents"),
		Currency: pick(record, index, "currency"),
	}
	if *row == (csvRow{}) {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
