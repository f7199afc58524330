// Package data embeds the bootstrap catalog.
package data

import (
	"embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"eshopperz/ent"
)

//go:embed catalog.csv
var FS embed.FS

const catalogFields = 7

// Catalog parses catalog.csv. The item type becomes the category name.
func Catalog() ([]ent.CatalogItem, error) {
	f, err := FS.Open("catalog.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = catalogFields

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	items := make([]ent.CatalogItem, 0, len(records)-1)

	// first record is the header
	for i, rec := range records[1:] {
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}

		price, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse price: %w", i+2, err)
		}

		quantity, err := strconv.ParseInt(rec[6], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse quantity: %w", i+2, err)
		}

		items = append(items, ent.CatalogItem{
			Category: rec[1],
			Product: ent.Product{
				Name:            rec[0],
				Description:     rec[2],
				Price:           price,
				Brand:           rec[4],
				PictureURL:      rec[5],
				QuantityInStock: int32(quantity),
			},
		})
	}

	return items, nil
}
