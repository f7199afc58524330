package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

func (s *Store) ListOrderItems(ctx context.Context) ([]ent.OrderItem, error) {
	items := []ent.OrderItem{}

	err := s.db.SelectContext(ctx, &items, `
		select order_id, product_id, date_of_order, quantity from order_item
		order by order_id asc, product_id asc, date_of_order asc
	`)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}

	return items, nil
}

func (s *Store) GetOrderItem(ctx context.Context, k ent.OrderItemKey) (ent.OrderItem, error) {
	var item ent.OrderItem
	err := s.db.GetContext(ctx, &item, `
		select order_id, product_id, date_of_order, quantity from order_item
		where order_id = $1 and product_id = $2 and date_of_order = $3
	`, k.OrderID, k.ProductID, k.DateOfOrder)
	return item, translate(err)
}

func (s *Store) CreateOrderItem(ctx context.Context, item ent.OrderItem) error {
	_, err := s.db.ExecContext(ctx, `
		insert into order_item(order_id, product_id, date_of_order, quantity)
		values ($1, $2, $3, $4)
	`, item.OrderID, item.ProductID, item.DateOfOrder, item.Quantity)
	return translate(err)
}

// UpdateOrderItem replaces the quantity; the composite key itself is immutable.
func (s *Store) UpdateOrderItem(ctx context.Context, item ent.OrderItem) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var quantity int32
		err := tx.GetContext(ctx, &quantity, `
			select quantity from order_item
			where order_id = $1 and product_id = $2 and date_of_order = $3
			for update
		`, item.OrderID, item.ProductID, item.DateOfOrder)
		if err != nil {
			return translate(err)
		}

		_, err = tx.ExecContext(ctx, `
			update order_item set quantity = $4
			where order_id = $1 and product_id = $2 and date_of_order = $3
		`, item.OrderID, item.ProductID, item.DateOfOrder, item.Quantity)
		return translate(err)
	})
}

func (s *Store) DeleteOrderItem(ctx context.Context, k ent.OrderItemKey) error {
	res, err := s.db.ExecContext(ctx, `
		delete from order_item
		where order_id = $1 and product_id = $2 and date_of_order = $3
	`, k.OrderID, k.ProductID, k.DateOfOrder)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
