package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"eshopperz/identity"
)

func roleError(err error) error {
	switch {
	case errors.Is(err, identity.ErrRoleNotFound):
		return notFound("role")
	case errors.Is(err, identity.ErrUserNotFound):
		return notFound("user")
	case errors.Is(err, identity.ErrRoleExists):
		return conflict(err.Error())
	case errors.Is(err, identity.ErrRoleNameRequired):
		return badRequest(err.Error())
	}
	return err
}

func (s *Server) listRoles(c *fiber.Ctx) error {
	rs, err := s.identities.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rs)
}

func (s *Server) getRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	r, err := s.identities.GetRole(c.UserContext(), id)
	if err != nil {
		return roleError(err)
	}

	return c.JSON(r)
}

func (s *Server) createRole(c *fiber.Ctx) error {
	var req struct {
		RoleName string `json:"role_name"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}

	r, err := s.identities.CreateRole(c.UserContext(), req.RoleName)
	if err != nil {
		return roleError(err)
	}

	return created(c, fmt.Sprintf("/api/roles/%d", r.ID), r)
}

func (s *Server) updateRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		NewRoleName string `json:"new_role_name"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}

	r, err := s.identities.UpdateRole(c.UserContext(), id, req.NewRoleName)
	if err != nil {
		return roleError(err)
	}

	return c.JSON(r)
}

func (s *Server) deleteRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := s.identities.DeleteRole(c.UserContext(), id); err != nil {
		return roleError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) assignRole(c *fiber.Ctx) error {
	var req struct {
		UserID   int64  `json:"user_id"`
		RoleName string `json:"role_name"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.UserID == 0 || req.RoleName == "" {
		return badRequest("user_id and role_name are required")
	}

	if err := s.identities.AssignRole(c.UserContext(), req.UserID, req.RoleName); err != nil {
		return roleError(err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("role %q assigned to user %d", req.RoleName, req.UserID),
	})
}
