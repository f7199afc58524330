package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"eshopperz/ent"
)

func (s *Server) listCustomers(c *fiber.Ctx) error {
	cs, err := s.store.ListCustomers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (s *Server) getCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	cu, err := s.store.GetCustomer(c.UserContext(), id)
	if err != nil {
		return storeError(err, "customer")
	}

	return c.JSON(cu)
}

func (s *Server) createCustomer(c *fiber.Ctx) error {
	var cu ent.Customer
	if err := decode(c, &cu); err != nil {
		return err
	}

	cu.Name = strings.TrimSpace(cu.Name)
	if cu.Name == "" {
		return badRequest("name is required")
	}

	if cu.ID != 0 {
		_, err := s.store.GetCustomer(c.UserContext(), cu.ID)
		if err := idTaken(err, "customer"); err != nil {
			return err
		}
		cu.ID = 0
	}

	if err := s.store.CreateCustomer(c.UserContext(), &cu); err != nil {
		return storeError(err, "customer")
	}

	return created(c, fmt.Sprintf("/api/customers/%d", cu.ID), cu)
}

func (s *Server) updateCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var cu ent.Customer
	if err := decode(c, &cu); err != nil {
		return err
	}
	if cu.ID != id {
		return badRequest("id mismatch")
	}

	cu.Name = strings.TrimSpace(cu.Name)
	if cu.Name == "" {
		return badRequest("name is required")
	}

	if err := s.store.UpdateCustomer(c.UserContext(), cu); err != nil {
		return storeError(err, "customer")
	}

	return c.JSON(cu)
}

// deleteCustomer leaves it to the foreign keys to refuse while carts or
// orders still reference the customer.
func (s *Server) deleteCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := s.store.DeleteCustomer(c.UserContext(), id); err != nil {
		return storeError(err, "customer")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
