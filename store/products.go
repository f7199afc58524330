package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

// ProductFilter narrows ListProducts. Zero values match everything.
type ProductFilter struct {
	Search     string
	CategoryID int64
}

const productColumns = `p.id as id, p.category_id as category_id, p.name as name,
	p.description as description, p.price as price,
	p.quantity_in_stock as quantity_in_stock, p.brand as brand,
	p.picture_url as picture_url`

const productFrom = `from product p left join category c on p.category_id = c.id`

// likeEscaper makes a search term match literally inside an ilike pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]ent.Product, error) {
	ps := []ent.Product{}

	err := s.db.SelectContext(ctx, &ps, `
		select `+productColumns+`, c.name as category_name
		`+productFrom+`
		where ($1::text = '' or p.name ilike '%' || $1::text || '%' escape '\')
			and ($2::bigint = 0 or p.category_id = $2::bigint)
		order by p.id asc
	`, likeEscaper.Replace(f.Search), f.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	return ps, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (ent.Product, error) {
	var p ent.Product
	err := s.db.GetContext(ctx, &p, `
		select `+productColumns+`, c.name as category_name
		`+productFrom+` where p.id = $1
	`, id)
	return p, translate(err)
}

func (s *Store) FindProductByName(ctx context.Context, name string) (ent.Product, error) {
	var p ent.Product
	err := s.db.GetContext(ctx, &p, `
		select `+productColumns+` from product p where p.name = $1
	`, name)
	return p, translate(err)
}

func (s *Store) CreateProduct(ctx context.Context, p *ent.Product) error {
	err := s.db.GetContext(ctx, &p.ID, `
		insert into product(category_id, name, description, price,
			quantity_in_stock, brand, picture_url)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id
	`, p.CategoryID, p.Name, p.Description, p.Price, p.QuantityInStock,
		p.Brand, p.PictureURL)
	return translate(err)
}

func (s *Store) UpdateProduct(ctx context.Context, p ent.Product) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "product", p.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			update product set category_id = $2, name = $3, description = $4,
				price = $5, quantity_in_stock = $6, brand = $7, picture_url = $8
			where id = $1
		`, p.ID, p.CategoryID, p.Name, p.Description, p.Price,
			p.QuantityInStock, p.Brand, p.PictureURL)
		return translate(err)
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from product where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}

// ProductInUse reports whether any order item or order references the product.
func (s *Store) ProductInUse(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, `
		select 1 from order_item where product_id = $1
		union all
		select 1 from order_product where product_id = $1
	`, id)
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `select count(*) from product`)
	return n, err
}
