package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"eshopperz/ent"
)

func (s *Server) listCategories(c *fiber.Ctx) error {
	cs, err := s.store.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (s *Server) getCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	cat, err := s.store.GetCategory(c.UserContext(), id)
	if err != nil {
		return storeError(err, "category")
	}

	return c.JSON(cat)
}

func (s *Server) categoryNameFree(c *fiber.Ctx, cat ent.Category) error {
	other, err := s.store.FindCategoryByName(c.UserContext(), cat.Name)
	switch {
	case err == nil && other.ID != cat.ID:
		return conflict(fmt.Sprintf("category %q already exists", cat.Name))
	case err != nil && !isNotFound(err):
		return err
	}
	return nil
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	var cat ent.Category
	if err := decode(c, &cat); err != nil {
		return err
	}

	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return badRequest("name is required")
	}

	if cat.ID != 0 {
		_, err := s.store.GetCategory(c.UserContext(), cat.ID)
		if err := idTaken(err, "category"); err != nil {
			return err
		}
		cat.ID = 0
	}

	if err := s.categoryNameFree(c, cat); err != nil {
		return err
	}

	if err := s.store.CreateCategory(c.UserContext(), &cat); err != nil {
		return storeError(err, "category")
	}

	return created(c, fmt.Sprintf("/api/categories/%d", cat.ID), cat)
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var cat ent.Category
	if err := decode(c, &cat); err != nil {
		return err
	}
	if cat.ID != id {
		return badRequest("id mismatch")
	}

	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return badRequest("name is required")
	}

	if err := s.categoryNameFree(c, cat); err != nil {
		return err
	}

	if err := s.store.UpdateCategory(c.UserContext(), cat); err != nil {
		return storeError(err, "category")
	}

	return c.JSON(cat)
}

// deleteCategory refuses while any product is still in the category.
func (s *Server) deleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return storeError(err, "category")
	}

	inUse, err := s.store.CategoryInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return conflict("category still has products")
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return storeError(err, "category")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
