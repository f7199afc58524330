package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"eshopperz/ent"
	"eshopperz/store"
)

func (s *Server) listProducts(c *fiber.Ctx) error {
	f := store.ProductFilter{Search: strings.TrimSpace(c.Query("search"))}

	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := strconv.ParseInt(categoryID, 10, 64)
		if err != nil {
			return badRequest("invalid category_id")
		}
		f.CategoryID = id
	}

	ps, err := s.store.ListProducts(c.UserContext(), f)
	if err != nil {
		return err
	}

	return c.JSON(ps)
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	p, err := s.store.GetProduct(c.UserContext(), id)
	if err != nil {
		return storeError(err, "product")
	}

	return c.JSON(p)
}

// maxPrice is the first value that does not fit price numeric(12, 2).
var maxPrice = decimal.New(1, 10)

func validateProduct(p *ent.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return badRequest("name is required")
	case p.CategoryID == 0:
		return badRequest("category_id is required")
	case p.Price.IsNegative():
		return badRequest("price must not be negative")
	case !p.Price.Equal(p.Price.Round(2)):
		return badRequest("price must have at most 2 decimal places")
	case p.Price.GreaterThanOrEqual(maxPrice):
		return badRequest("price must be less than " + maxPrice.String())
	case p.QuantityInStock < 0:
		return badRequest("quantity_in_stock must not be negative")
	}
	p.Price = p.Price.Round(2)
	return nil
}

// productReferences checks the category exists and that no other product
// holds the name. It fills p.CategoryName.
func (s *Server) productReferences(c *fiber.Ctx, p *ent.Product) error {
	ctx := c.UserContext()

	cat, err := s.store.GetCategory(ctx, p.CategoryID)
	if err != nil {
		return mustExist(err, fmt.Sprintf("category %d", p.CategoryID))
	}
	p.CategoryName = &cat.Name

	other, err := s.store.FindProductByName(ctx, p.Name)
	switch {
	case err == nil && other.ID != p.ID:
		return conflict(fmt.Sprintf("product %q already exists", p.Name))
	case err != nil && !isNotFound(err):
		return err
	}

	return nil
}

func (s *Server) createProduct(c *fiber.Ctx) error {
	var p ent.Product
	if err := decode(c, &p); err != nil {
		return err
	}
	if err := validateProduct(&p); err != nil {
		return err
	}

	if p.ID != 0 {
		_, err := s.store.GetProduct(c.UserContext(), p.ID)
		if err := idTaken(err, "product"); err != nil {
			return err
		}
		p.ID = 0
	}

	if err := s.productReferences(c, &p); err != nil {
		return err
	}

	if err := s.store.CreateProduct(c.UserContext(), &p); err != nil {
		return storeError(err, "product")
	}

	return created(c, fmt.Sprintf("/api/products/%d", p.ID), p)
}

func (s *Server) updateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var p ent.Product
	if err := decode(c, &p); err != nil {
		return err
	}
	if p.ID != id {
		return badRequest("id mismatch")
	}
	if err := validateProduct(&p); err != nil {
		return err
	}

	if err := s.productReferences(c, &p); err != nil {
		return err
	}

	if err := s.store.UpdateProduct(c.UserContext(), p); err != nil {
		return storeError(err, "product")
	}

	return c.JSON(p)
}

func (s *Server) deleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	if _, err := s.store.GetProduct(ctx, id); err != nil {
		return storeError(err, "product")
	}

	inUse, err := s.store.ProductInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return conflict("product is referenced by orders")
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return storeError(err, "product")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
