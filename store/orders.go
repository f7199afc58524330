package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"eshopperz/ent"
)

type orderProduct struct {
	OrderID   int64 `db:"order_id"`
	ProductID int64 `db:"product_id"`
}

func (s *Store) ListOrders(ctx context.Context) ([]ent.Order, error) {
	orders := []ent.Order{}

	err := s.db.SelectContext(ctx, &orders, `
		select id, customer_id, cart_id from "order" order by id asc
	`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	var links []orderProduct
	err = s.db.SelectContext(ctx, &links, `
		select order_id, product_id from order_product
		order by order_id asc, product_id asc
	`)
	if err != nil {
		return nil, fmt.Errorf("select order products: %w", err)
	}

	byOrder := map[int64][]int64{}
	for _, l := range links {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l.ProductID)
	}

	for i := range orders {
		orders[i].ProductIDs = byOrder[orders[i].ID]
		if orders[i].ProductIDs == nil {
			orders[i].ProductIDs = []int64{}
		}
	}

	return orders, nil
}

// GetOrder returns the order together with its products.
func (s *Store) GetOrder(ctx context.Context, id int64) (ent.Order, error) {
	var o ent.Order

	err := s.db.GetContext(ctx, &o, `
		select id, customer_id, cart_id from "order" where id = $1
	`, id)
	if err != nil {
		return o, translate(err)
	}

	o.Products = []ent.Product{}
	err = s.db.SelectContext(ctx, &o.Products, `
		select `+productColumns+`
		from order_product op
			join product p on op.product_id = p.id
		where op.order_id = $1
		order by p.id asc
	`, id)
	if err != nil {
		return o, fmt.Errorf("select order %d products: %w", id, err)
	}

	o.ProductIDs = make([]int64, 0, len(o.Products))
	for _, p := range o.Products {
		o.ProductIDs = append(o.ProductIDs, p.ID)
	}

	return o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *ent.Order) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &o.ID, `
			insert into "order"(customer_id, cart_id) values ($1, $2) returning id
		`, o.CustomerID, o.CartID)
		if err != nil {
			return translate(err)
		}

		return linkOrderProducts(ctx, tx, o.ID, o.ProductIDs)
	})
}

func (s *Store) UpdateOrder(ctx context.Context, o ent.Order) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, `"order"`, o.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			update "order" set customer_id = $2, cart_id = $3 where id = $1
		`, o.ID, o.CustomerID, o.CartID)
		if err != nil {
			return translate(err)
		}

		_, err = tx.ExecContext(ctx, `delete from order_product where order_id = $1`, o.ID)
		if err != nil {
			return err
		}

		return linkOrderProducts(ctx, tx, o.ID, o.ProductIDs)
	})
}

func linkOrderProducts(ctx context.Context, tx *sqlx.Tx, orderID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		insert into order_product(order_id, product_id)
		select $1, unnest($2::bigint[])
	`, orderID, pq.Array(productIDs))
	return translate(err)
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from "order" where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
