package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"eshopperz/ent"
)

func (s *Server) createContactMessage(c *fiber.Ctx) error {
	var m ent.ContactMessage
	if err := decode(c, &m); err != nil {
		return err
	}

	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	if m.Name == "" || m.Email == "" || strings.TrimSpace(m.Message) == "" {
		return badRequest("name, email and message are required")
	}

	if err := s.store.CreateContactMessage(c.UserContext(), &m); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

func (s *Server) listContactMessages(c *fiber.Ctx) error {
	ms, err := s.store.ListContactMessages(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ms)
}
