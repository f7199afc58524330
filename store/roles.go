package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

func (s *Store) ListRoles(ctx context.Context) ([]ent.Role, error) {
	rs := []ent.Role{}

	err := s.db.SelectContext(ctx, &rs, `select id, name from role order by id asc`)
	if err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}

	return rs, nil
}

func (s *Store) GetRole(ctx context.Context, id int64) (ent.Role, error) {
	var r ent.Role
	err := s.db.GetContext(ctx, &r, `select id, name from role where id = $1`, id)
	return r, translate(err)
}

func (s *Store) FindRoleByName(ctx context.Context, name string) (ent.Role, error) {
	var r ent.Role
	err := s.db.GetContext(ctx, &r, `select id, name from role where name = $1`, name)
	return r, translate(err)
}

func (s *Store) CreateRole(ctx context.Context, r *ent.Role) error {
	err := s.db.GetContext(ctx, &r.ID,
		`insert into role(name) values ($1) returning id`, r.Name)
	return translate(err)
}

func (s *Store) UpdateRole(ctx context.Context, r ent.Role) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "role", r.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `update role set name = $2 where id = $1`, r.ID, r.Name)
		return translate(err)
	})
}

func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from role where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
