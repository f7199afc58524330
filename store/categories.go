package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eshopperz/ent"
)

func (s *Store) ListCategories(ctx context.Context) ([]ent.Category, error) {
	cs := []ent.Category{}

	err := s.db.SelectContext(ctx, &cs, `select id, name from category order by id asc`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	return cs, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (ent.Category, error) {
	var c ent.Category
	err := s.db.GetContext(ctx, &c, `select id, name from category where id = $1`, id)
	return c, translate(err)
}

func (s *Store) FindCategoryByName(ctx context.Context, name string) (ent.Category, error) {
	var c ent.Category
	err := s.db.GetContext(ctx, &c, `select id, name from category where name = $1`, name)
	return c, translate(err)
}

func (s *Store) CreateCategory(ctx context.Context, c *ent.Category) error {
	err := s.db.GetContext(ctx, &c.ID,
		`insert into category(name) values ($1) returning id`, c.Name)
	return translate(err)
}

func (s *Store) UpdateCategory(ctx context.Context, c ent.Category) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "category", c.ID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`update category set name = $2 where id = $1`, c.ID, c.Name)
		return translate(err)
	})
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from category where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}

// CategoryInUse reports whether any product belongs to the category.
func (s *Store) CategoryInUse(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, `select 1 from product where category_id = $1`, id)
}
