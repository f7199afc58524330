package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

const userColumns = `id, username, email, password_hash, email_verified, created_at`

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `select count(*) from app_user`)
	return n, err
}

func (s *Store) CreateUser(ctx context.Context, u *ent.User) error {
	err := s.db.QueryRowxContext(ctx, `
		insert into app_user(username, email, password_hash, email_verified)
		values ($1, $2, $3, $4)
		returning id, created_at
	`, u.Username, u.Email, u.PasswordHash, u.EmailVerified).Scan(&u.ID, &u.CreatedAt)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id int64) (ent.User, error) {
	return s.findUser(ctx, `select `+userColumns+` from app_user where id = $1`, id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (ent.User, error) {
	return s.findUser(ctx, `select `+userColumns+` from app_user where lower(email) = lower($1)`, email)
}

func (s *Store) findUser(ctx context.Context, query string, arg interface{}) (ent.User, error) {
	var u ent.User

	err := s.db.GetContext(ctx, &u, query, arg)
	if err != nil {
		return u, translate(err)
	}

	u.Roles, err = s.UserRoles(ctx, u.ID)
	if err != nil {
		return u, err
	}

	return u, nil
}

func (s *Store) UserRoles(ctx context.Context, userID int64) ([]string, error) {
	roles := []string{}

	err := s.db.SelectContext(ctx, &roles, `
		select r.name from user_role ur
			join role r on ur.role_id = r.id
		where ur.user_id = $1
		order by r.name asc
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select user %d roles: %w", userID, err)
	}

	return roles, nil
}

func (s *Store) MarkEmailVerified(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`update app_user set email_verified = true where id = $1`, userID)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from app_user where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}

// AddUserRole grants the role; granting it twice is a no-op.
func (s *Store) AddUserRole(ctx context.Context, userID, roleID int64) error {
	_, err := s.db.ExecContext(ctx, `
		insert into user_role(user_id, role_id) values ($1, $2)
		on conflict do nothing
	`, userID, roleID)
	return translate(err)
}

// CreateUserWithRoles inserts the user and grants the named roles, creating
// missing roles, in one transaction.
func (s *Store) CreateUserWithRoles(ctx context.Context, u *ent.User, roles []string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			insert into app_user(username, email, password_hash, email_verified)
			values ($1, $2, $3, $4)
			returning id, created_at
		`, u.Username, u.Email, u.PasswordHash, u.EmailVerified).Scan(&u.ID, &u.CreatedAt)
		if err != nil {
			return translate(err)
		}

		for _, name := range roles {
			var roleID int64
			err = tx.GetContext(ctx, &roleID, `
				insert into role(name) values ($1)
				on conflict (name) do update set name = excluded.name
				returning id
			`, name)
			if err != nil {
				return fmt.Errorf("ensure role %q: %w", name, err)
			}

			_, err = tx.ExecContext(ctx, `
				insert into user_role(user_id, role_id) values ($1, $2)
				on conflict do nothing
			`, u.ID, roleID)
			if err != nil {
				return fmt.Errorf("grant role %q: %w", name, err)
			}
		}

		u.Roles = append([]string(nil), roles...)
		return nil
	})
}
