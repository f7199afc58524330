package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"eshopperz/ent"
)

func (s *Server) listOrders(c *fiber.Ctx) error {
	orders, err := s.store.ListOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, err := s.store.GetOrder(c.UserContext(), id)
	if err != nil {
		return storeError(err, "order")
	}

	return c.JSON(o)
}

// orderReferences checks the customer, the cart and every product exist and
// drops duplicate product ids.
func (s *Server) orderReferences(c *fiber.Ctx, o *ent.Order) error {
	ctx := c.UserContext()

	if o.CustomerID == 0 {
		return badRequest("customer_id is required")
	}
	if _, err := s.store.GetCustomer(ctx, o.CustomerID); err != nil {
		return mustExist(err, fmt.Sprintf("customer %d", o.CustomerID))
	}

	if o.CartID != nil {
		if _, err := s.store.GetCart(ctx, *o.CartID); err != nil {
			return mustExist(err, fmt.Sprintf("cart %d", *o.CartID))
		}
	}

	seen := make(map[int64]bool, len(o.ProductIDs))
	ids := make([]int64, 0, len(o.ProductIDs))
	for _, id := range o.ProductIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, err := s.store.GetProduct(ctx, id); err != nil {
			return mustExist(err, fmt.Sprintf("product %d", id))
		}
		ids = append(ids, id)
	}
	o.ProductIDs = ids
	o.Products = nil

	return nil
}

func (s *Server) createOrder(c *fiber.Ctx) error {
	var o ent.Order
	if err := decode(c, &o); err != nil {
		return err
	}

	if o.ID != 0 {
		_, err := s.store.GetOrder(c.UserContext(), o.ID)
		if err := idTaken(err, "order"); err != nil {
			return err
		}
		o.ID = 0
	}

	if err := s.orderReferences(c, &o); err != nil {
		return err
	}

	if err := s.store.CreateOrder(c.UserContext(), &o); err != nil {
		return storeError(err, "order")
	}

	return s.respondOrder(c, o.ID, true)
}

func (s *Server) updateOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var o ent.Order
	if err := decode(c, &o); err != nil {
		return err
	}
	if o.ID != id {
		return badRequest("id mismatch")
	}

	if err := s.orderReferences(c, &o); err != nil {
		return err
	}

	if err := s.store.UpdateOrder(c.UserContext(), o); err != nil {
		return storeError(err, "order")
	}

	return s.respondOrder(c, o.ID, false)
}

// respondOrder re-reads the order so the response carries its products.
func (s *Server) respondOrder(c *fiber.Ctx, id int64, isNew bool) error {
	o, err := s.store.GetOrder(c.UserContext(), id)
	if err != nil {
		return storeError(err, "order")
	}

	if isNew {
		return created(c, fmt.Sprintf("/api/orders/%d", o.ID), o)
	}
	return c.JSON(o)
}

func (s *Server) deleteOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := s.store.DeleteOrder(c.UserContext(), id); err != nil {
		return storeError(err, "order")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
