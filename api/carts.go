package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"eshopperz/ent"
)

func (s *Server) listCarts(c *fiber.Ctx) error {
	cs, err := s.store.ListCarts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (s *Server) getCart(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	cart, err := s.store.GetCart(c.UserContext(), id)
	if err != nil {
		return storeError(err, "cart")
	}

	return c.JSON(cart)
}

func (s *Server) cartCustomer(c *fiber.Ctx, cart ent.Cart) error {
	if cart.CustomerID == 0 {
		return badRequest("customer_id is required")
	}
	_, err := s.store.GetCustomer(c.UserContext(), cart.CustomerID)
	if err != nil {
		return mustExist(err, fmt.Sprintf("customer %d", cart.CustomerID))
	}
	return nil
}

func (s *Server) createCart(c *fiber.Ctx) error {
	var cart ent.Cart
	if err := decode(c, &cart); err != nil {
		return err
	}

	if cart.ID != 0 {
		_, err := s.store.GetCart(c.UserContext(), cart.ID)
		if err := idTaken(err, "cart"); err != nil {
			return err
		}
		cart.ID = 0
	}

	if err := s.cartCustomer(c, cart); err != nil {
		return err
	}

	if err := s.store.CreateCart(c.UserContext(), &cart); err != nil {
		return storeError(err, "cart")
	}

	return created(c, fmt.Sprintf("/api/carts/%d", cart.ID), cart)
}

func (s *Server) updateCart(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var cart ent.Cart
	if err := decode(c, &cart); err != nil {
		return err
	}
	if cart.ID != id {
		return badRequest("id mismatch")
	}

	if err := s.cartCustomer(c, cart); err != nil {
		return err
	}

	if err := s.store.UpdateCart(c.UserContext(), cart); err != nil {
		return storeError(err, "cart")
	}

	return c.JSON(cart)
}

func (s *Server) deleteCart(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := s.store.DeleteCart(c.UserContext(), id); err != nil {
		return storeError(err, "cart")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
