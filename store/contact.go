package store

import (
	"context"
	"fmt"

	"eshopperz/ent"
)

func (s *Store) CreateContactMessage(ctx context.Context, m *ent.ContactMessage) error {
	return s.db.QueryRowxContext(ctx, `
		insert into contact_message(name, email, message) values ($1, $2, $3)
		returning id, created_at
	`, m.Name, m.Email, m.Message).Scan(&m.ID, &m.CreatedAt)
}

func (s *Store) ListContactMessages(ctx context.Context) ([]ent.ContactMessage, error) {
	ms := []ent.ContactMessage{}

	err := s.db.SelectContext(ctx, &ms, `
		select id, name, email, message, created_at from contact_message
		order by created_at desc
	`)
	if err != nil {
		return nil, fmt.Errorf("select contact messages: %w", err)
	}

	return ms, nil
}
