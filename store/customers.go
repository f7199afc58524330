package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

func (s *Store) ListCustomers(ctx context.Context) ([]ent.Customer, error) {
	cs := []ent.Customer{}

	err := s.db.SelectContext(ctx, &cs, `select id, name, email from customer order by id asc`)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}

	return cs, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (ent.Customer, error) {
	var c ent.Customer
	err := s.db.GetContext(ctx, &c, `select id, name, email from customer where id = $1`, id)
	return c, translate(err)
}

func (s *Store) CreateCustomer(ctx context.Context, c *ent.Customer) error {
	err := s.db.GetContext(ctx, &c.ID, `
		insert into customer(name, email) values ($1, $2) returning id
	`, c.Name, c.Email)
	return translate(err)
}

func (s *Store) UpdateCustomer(ctx context.Context, c ent.Customer) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "customer", c.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`update customer set name = $2, email = $3 where id = $1`,
			c.ID, c.Name, c.Email)
		return translate(err)
	})
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from customer where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
