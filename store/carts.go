package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

func (s *Store) ListCarts(ctx context.Context) ([]ent.Cart, error) {
	cs := []ent.Cart{}

	err := s.db.SelectContext(ctx, &cs, `select id, customer_id from cart order by id asc`)
	if err != nil {
		return nil, fmt.Errorf("select carts: %w", err)
	}

	return cs, nil
}

func (s *Store) GetCart(ctx context.Context, id int64) (ent.Cart, error) {
	var c ent.Cart
	err := s.db.GetContext(ctx, &c, `select id, customer_id from cart where id = $1`, id)
	return c, translate(err)
}

func (s *Store) CreateCart(ctx context.Context, c *ent.Cart) error {
	err := s.db.GetContext(ctx, &c.ID,
		`insert into cart(customer_id) values ($1) returning id`, c.CustomerID)
	return translate(err)
}

func (s *Store) UpdateCart(ctx context.Context, c ent.Cart) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "cart", c.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`update cart set customer_id = $2 where id = $1`, c.ID, c.CustomerID)
		return translate(err)
	})
}

func (s *Store) DeleteCart(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from cart where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
