package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"eshopperz/ent"
)

func (s *Server) listOrderItems(c *fiber.Ctx) error {
	items, err := s.store.ListOrderItems(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func itemKey(c *fiber.Ctx) (ent.OrderItemKey, error) {
	var (
		k   ent.OrderItemKey
		err error
	)

	if k.ProductID, err = paramID(c, "productId"); err != nil {
		return k, err
	}
	if k.OrderID, err = paramID(c, "orderId"); err != nil {
		return k, err
	}
	if k.DateOfOrder, err = ent.ParseDate(c.Params("dateOfOrder")); err != nil {
		return k, badRequest("invalid dateOfOrder, expected " + ent.DateLayout)
	}

	return k, nil
}

func itemLocation(k ent.OrderItemKey) string {
	return fmt.Sprintf("/api/order-items/%d/%d/%s", k.ProductID, k.OrderID, k.DateOfOrder)
}

func (s *Server) getOrderItem(c *fiber.Ctx) error {
	k, err := itemKey(c)
	if err != nil {
		return err
	}

	item, err := s.store.GetOrderItem(c.UserContext(), k)
	if err != nil {
		return storeError(err, "order item")
	}

	return c.JSON(item)
}

func validateOrderItem(item ent.OrderItem) error {
	switch {
	case item.OrderID == 0:
		return badRequest("order_id is required")
	case item.ProductID == 0:
		return badRequest("product_id is required")
	case item.DateOfOrder.IsZero():
		return badRequest("date_of_order is required")
	case item.Quantity <= 0:
		return badRequest("quantity must be positive")
	}
	return nil
}

func (s *Server) orderItemReferences(c *fiber.Ctx, item ent.OrderItem) error {
	ctx := c.UserContext()

	if _, err := s.store.GetOrder(ctx, item.OrderID); err != nil {
		return mustExist(err, fmt.Sprintf("order %d", item.OrderID))
	}
	if _, err := s.store.GetProduct(ctx, item.ProductID); err != nil {
		return mustExist(err, fmt.Sprintf("product %d", item.ProductID))
	}

	return nil
}

func (s *Server) createOrderItem(c *fiber.Ctx) error {
	var item ent.OrderItem
	if err := decode(c, &item); err != nil {
		return err
	}
	if err := validateOrderItem(item); err != nil {
		return err
	}

	if err := s.orderItemReferences(c, item); err != nil {
		return err
	}

	_, err := s.store.GetOrderItem(c.UserContext(), item.Key())
	if err := idTaken(err, "order item"); err != nil {
		return err
	}

	if err := s.store.CreateOrderItem(c.UserContext(), item); err != nil {
		return storeError(err, "order item")
	}

	return created(c, itemLocation(item.Key()), item)
}

// updateOrderItem only changes the quantity; the key in the path and the body
// must agree.
func (s *Server) updateOrderItem(c *fiber.Ctx) error {
	k, err := itemKey(c)
	if err != nil {
		return err
	}

	var item ent.OrderItem
	if err := decode(c, &item); err != nil {
		return err
	}

	bk := item.Key()
	if bk.ProductID != k.ProductID || bk.OrderID != k.OrderID || !bk.DateOfOrder.Equal(k.DateOfOrder) {
		return badRequest("key mismatch")
	}
	if err := validateOrderItem(item); err != nil {
		return err
	}

	if err := s.store.UpdateOrderItem(c.UserContext(), item); err != nil {
		return storeError(err, "order item")
	}

	return c.JSON(item)
}

func (s *Server) deleteOrderItem(c *fiber.Ctx) error {
	k, err := itemKey(c)
	if err != nil {
		return err
	}

	if err := s.store.DeleteOrderItem(c.UserContext(), k); err != nil {
		return storeError(err, "order item")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
