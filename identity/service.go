// Package identity manages user accounts, roles, email verification and
// bearer tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"eshopperz/ent"
	"eshopperz/mail"
	"eshopperz/store"
)

const (
	AdminRole  = "Admin"
	MemberRole = "Member"
)

var (
	// ErrInvalidCredentials does not say whether the email or the password
	// was wrong.
	ErrInvalidCredentials = errors.New("invalid login attempt")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong guards bcrypt's 72-byte input limit.
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrRoleExists       = errors.New("role already exists")
	ErrRoleNameRequired = errors.New("role name is required")
)

// Users is the persistence the service needs; *store.Store implements it.
type Users interface {
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, u *ent.User) error
	CreateUserWithRoles(ctx context.Context, u *ent.User, roles []string) error
	GetUser(ctx context.Context, id int64) (ent.User, error)
	FindUserByEmail(ctx context.Context, email string) (ent.User, error)
	MarkEmailVerified(ctx context.Context, userID int64) error
	DeleteUser(ctx context.Context, id int64) error
	AddUserRole(ctx context.Context, userID, roleID int64) error

	ListRoles(ctx context.Context) ([]ent.Role, error)
	GetRole(ctx context.Context, id int64) (ent.Role, error)
	FindRoleByName(ctx context.Context, name string) (ent.Role, error)
	CreateRole(ctx context.Context, r *ent.Role) error
	UpdateRole(ctx context.Context, r ent.Role) error
	DeleteRole(ctx context.Context, id int64) error
}

type Service struct {
	users         Users
	verifications *VerificationTokens
	tokens        *TokenManager
	hasher        *PasswordHasher
	mailer        mail.Sender
	publicURL     string
	log           logrus.FieldLogger
}

func NewService(users Users, verifications *VerificationTokens, tokens *TokenManager,
	hasher *PasswordHasher, mailer mail.Sender, publicURL string, log logrus.FieldLogger) *Service {
	return &Service{
		users:         users,
		verifications: verifications,
		tokens:        tokens,
		hasher:        hasher,
		mailer:        mailer,
		publicURL:     strings.TrimRight(publicURL, "/"),
		log:           log,
	}
}

func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates an unverified account and mails a verification link.
// Mail delivery failures are logged, not returned.
func (s *Service) Register(ctx context.Context, email, password string) (ent.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return ent.User{}, err
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return ent.User{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return ent.User{}, fmt.Errorf("find user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ent.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := ent.User{Username: email, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ent.User{}, ErrEmailTaken
		}
		return ent.User{}, fmt.Errorf("create user: %w", err)
	}

	// An account without a token can never be verified; drop it so the
	// email can be registered again.
	token, err := s.verifications.Issue(ctx, u.ID)
	if err != nil {
		if derr := s.users.DeleteUser(ctx, u.ID); derr != nil {
			s.log.WithError(derr).WithField("user_id", u.ID).Error("failed to drop unverifiable user")
		}
		return ent.User{}, err
	}

	link := s.publicURL + "/api/account/verify-email?" + url.Values{
		"user_id": {strconv.FormatInt(u.ID, 10)},
		"token":   {token},
	}.Encode()

	err = s.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: "Email Verification",
		Body:    "Please verify your email by clicking the following link: " + link,
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Error("failed to queue verification email")
	}

	return u, nil
}

func validateCredentials(email, password string) error {
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, userID int64, token string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.verifications.Consume(ctx, userID, token); err != nil {
		return err
	}

	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("mark user %d verified: %w", userID, err)
	}

	return nil
}

// Login checks the credentials and returns a signed token with the user's
// role claims.
func (s *Service) Login(ctx context.Context, email, password string) (string, ent.User, error) {
	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ent.User{}, ErrInvalidCredentials
		}
		return "", ent.User{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ent.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", ent.User{}, fmt.Errorf("issue token: %w", err)
	}

	return token, u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (ent.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return u, ErrUserNotFound
		}
		return u, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	err := s.users.DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) ListRoles(ctx context.Context) ([]ent.Role, error) {
	return s.users.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, id int64) (ent.Role, error) {
	r, err := s.users.GetRole(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return r, ErrRoleNotFound
	}
	return r, err
}

func (s *Service) CreateRole(ctx context.Context, name string) (ent.Role, error) {
	r := ent.Role{Name: strings.TrimSpace(name)}
	if r.Name == "" {
		return r, ErrRoleNameRequired
	}

	err := s.users.CreateRole(ctx, &r)
	if errors.Is(err, store.ErrConflict) {
		return r, ErrRoleExists
	}
	return r, err
}

func (s *Service) UpdateRole(ctx context.Context, id int64, name string) (ent.Role, error) {
	r := ent.Role{ID: id, Name: strings.TrimSpace(name)}
	if r.Name == "" {
		return r, ErrRoleNameRequired
	}

	err := s.users.UpdateRole(ctx, r)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return r, ErrRoleNotFound
	case errors.Is(err, store.ErrConflict):
		return r, ErrRoleExists
	}
	return r, err
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	err := s.users.DeleteRole(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoleNotFound
	}
	return err
}

// AssignRole grants an existing role to an existing user. Granting a role the
// user already has succeeds.
func (s *Service) AssignRole(ctx context.Context, userID int64, roleName string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	r, err := s.users.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("find role %q: %w", roleName, err)
	}

	return s.users.AddUserRole(ctx, userID, r.ID)
}

func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.users.CountUsers(ctx)
	return n > 0, err
}

// CreateVerifiedUser creates an account that skips email verification,
// creating any missing roles.
func (s *Service) CreateVerifiedUser(ctx context.Context, username, email, password string, roles ...string) (ent.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ent.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := ent.User{Username: username, Email: email, PasswordHash: hash, EmailVerified: true}
	if err := s.users.CreateUserWithRoles(ctx, &u, roles); err != nil {
		return ent.User{}, fmt.Errorf("create user %q: %w", username, err)
	}

	return u, nil
}
