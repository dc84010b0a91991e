package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
)

type capsulesRepo struct {
	db DBTX
}

func (r *capsulesRepo) CreateCapsule(ctx context.Context, c domain.TimeCapsule) error {
	query :=
		`INSERT INTO time_capsules (id, creator_id, title, content, image, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	var image sql.NullString
	if c.Image != nil {
		image = sql.NullString{String: *c.Image, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.CreatorID, c.Title, c.Content, image, c.CreatedAt); err != nil {
		return mapConstraint(err)
	}

	for i, userID := range c.Recipients {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO capsule_recipients (capsule_id, position, user_id) VALUES ($1, $2, $3)`,
			c.ID, i, userID,
		); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *capsulesRepo) GetCapsuleByID(ctx context.Context, id string) (domain.TimeCapsule, error) {
	query :=
		`SELECT id, creator_id, title, content, image, created_at FROM time_capsules
		 WHERE id = $1`

	c, err := scanCapsule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.TimeCapsule{}, mapNotFound(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM capsule_recipients WHERE capsule_id = $1 ORDER BY position`, id)
	if err != nil {
		return domain.TimeCapsule{}, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return domain.TimeCapsule{}, fmt.Errorf("db error: %w", err)
		}
		c.Recipients = append(c.Recipients, userID)
	}
	if err := rows.Err(); err != nil {
		return domain.TimeCapsule{}, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *capsulesRepo) ListCapsulesByCreator(ctx context.Context, creatorID string) ([]domain.TimeCapsule, error) {
	query :=
		`SELECT id, creator_id, title, content, image, created_at FROM time_capsules
		 WHERE creator_id = $1
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []domain.TimeCapsule{}
	pos := map[string]int{}
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		pos[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	recRows, err := r.db.QueryContext(ctx,
		`SELECT r.capsule_id, r.user_id FROM capsule_recipients r
		 JOIN time_capsules c ON c.id = r.capsule_id
		 WHERE c.creator_id = $1
		 ORDER BY r.capsule_id, r.position`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer recRows.Close()

	for recRows.Next() {
		var capsuleID, userID string
		if err := recRows.Scan(&capsuleID, &userID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if i, ok := pos[capsuleID]; ok {
			out[i].Recipients = append(out[i].Recipients, userID)
		}
	}
	if err := recRows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCapsule(row rowScanner) (domain.TimeCapsule, error) {
	var (
		c     domain.TimeCapsule
		image sql.NullString
	)
	if err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Content, &image, &c.CreatedAt); err != nil {
		return domain.TimeCapsule{}, err
	}
	if image.Valid {
		c.Image = &image.String
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.Recipients = []string{}
	return c, nil
}
