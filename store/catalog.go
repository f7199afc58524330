package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

// ImportCatalog inserts the items in one transaction, creating their
// categories on the way. Existing categories are reused.
func (s *Store) ImportCatalog(ctx context.Context, items []ent.CatalogItem) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		categories := map[string]int64{}

		for _, item := range items {
			if _, ok := categories[item.Category]; ok {
				continue
			}

			var id int64
			err := tx.GetContext(ctx, &id, `
				insert into category(name) values ($1)
				on conflict (name) do update set name = excluded.name
				returning id
			`, item.Category)
			if err != nil {
				return fmt.Errorf("insert category %q: %w", item.Category, err)
			}
			categories[item.Category] = id
		}

		for _, item := range items {
			p := item.Product
			_, err := tx.ExecContext(ctx, `
				insert into product(category_id, name, description, price,
					quantity_in_stock, brand, picture_url)
				values ($1, $2, $3, $4, $5, $6, $7)
			`, categories[item.Category], p.Name, p.Description, p.Price,
				p.QuantityInStock, p.Brand, p.PictureURL)
			if err != nil {
				return fmt.Errorf("insert product %q: %w", p.Name, translate(err))
			}
		}

		return nil
	})
}
