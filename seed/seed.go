// Package seed bootstraps an empty database with demo accounts and the
// embedded catalog.
package seed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"eshopperz/data"
	"eshopperz/ent"
	"eshopperz/identity"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Pa$$w0rd"

type Accounts interface {
	HasUsers(ctx context.Context) (bool, error)
	CreateVerifiedUser(ctx context.Context, username, email, password string, roles ...string) (ent.User, error)
}

type Catalog interface {
	CountProducts(ctx context.Context) (int, error)
	ImportCatalog(ctx context.Context, items []ent.CatalogItem) error
}

type demoUser struct {
	username string
	email    string
	roles    []string
}

var demoUsers = []demoUser{
	{"bob", "bob@test.com", []string{identity.MemberRole}},
	{"admin", "admin@test.com", []string{identity.AdminRole, identity.MemberRole}},
}

// Run creates the demo accounts when there are no users and loads the
// catalog when there are no products. Running it again changes nothing.
func Run(ctx context.Context, accounts Accounts, catalog Catalog, log logrus.FieldLogger) error {
	hasUsers, err := accounts.HasUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if !hasUsers {
		for _, u := range demoUsers {
			created, err := accounts.CreateVerifiedUser(ctx, u.username, u.email, DemoPassword, u.roles...)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"user_id":  created.ID,
				"username": u.username,
				"roles":    u.roles,
			}).Info("seeded user")
		}
	}

	n, err := catalog.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return nil
	}

	items, err := data.Catalog()
	if err != nil {
		return err
	}

	if err := catalog.ImportCatalog(ctx, items); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	log.WithField("products", len(items)).Info("seeded catalog")

	return nil
}
