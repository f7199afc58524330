package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"eshopperz/identity"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req credentials
	if err := decode(c, &req); err != nil {
		return err
	}

	_, err := s.identities.Register(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrPasswordTooLong):
		return badRequest(err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		return conflict(err.Error())
	case err != nil:
		return err
	}

	return c.JSON(fiber.Map{
		"message": "registration successful, please check your email to verify your account",
	})
}

func (s *Server) verifyEmail(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		return badRequest("invalid user_id")
	}

	token := c.Query("token")
	if token == "" {
		return badRequest("token is required")
	}

	err = s.identities.VerifyEmail(c.UserContext(), userID, token)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return notFound("user")
	case errors.Is(err, identity.ErrInvalidVerificationToken):
		return badRequest(err.Error())
	case err != nil:
		return err
	}

	return c.JSON(fiber.Map{"message": "email verified"})
}

// login answers with a bearer token and also keeps it in the session so the
// storefront can rely on the cookie alone.
func (s *Server) login(c *fiber.Ctx) error {
	var req credentials
	if err := decode(c, &req); err != nil {
		return err
	}

	token, u, err := s.identities.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
		return err
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionTokenKey, token)
	if err := sess.Save(); err != nil {
		return err
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")

	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) logout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "logged out"})
}

// deleteAccount lets users remove themselves and admins remove anyone.
func (s *Server) deleteAccount(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		return badRequest("invalid user_id")
	}

	claims := claimsFrom(c)
	if claims.UserID != userID && !claims.HasRole(identity.AdminRole) {
		return fiber.NewError(http.StatusForbidden, "cannot delete another user's account")
	}

	err = s.identities.DeleteAccount(c.UserContext(), userID)
	if errors.Is(err, identity.ErrUserNotFound) {
		return notFound("user")
	}
	if err != nil {
		return err
	}

	s.log.WithField("user_id", userID).
		WithField("deleted_by", claims.UserID).
		Info("account deleted")

	return c.SendStatus(fiber.StatusNoContent)
}
