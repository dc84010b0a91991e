package sqlite

import (
	"context"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store/drivers/sqlite/gen"
)

type capsulesRepo struct {
	q *gen.Queries
}

func (r *capsulesRepo) CreateCapsule(ctx context.Context, c domain.TimeCapsule) error {
	err := r.q.CreateCapsule(ctx, gen.CreateCapsuleParams{
		ID:        c.ID,
		CreatorID: c.CreatorID,
		Title:     c.Title,
		Content:   c.Content,
		Image:     mapStringNull(c.Image),
		CreatedAt: toMillis(c.CreatedAt),
	})
	if err != nil {
		return mapConstraint(err)
	}

	for i, userID := range c.Recipients {
		if err := r.q.CreateCapsuleRecipient(ctx, gen.CreateCapsuleRecipientParams{
			CapsuleID: c.ID,
			Position:  int64(i),
			UserID:    userID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *capsulesRepo) GetCapsuleByID(ctx context.Context, id string) (domain.TimeCapsule, error) {
	row, err := r.q.GetCapsuleByID(ctx, id)
	if err != nil {
		return domain.TimeCapsule{}, mapNotFound(err)
	}

	recipients, err := r.q.ListRecipientsByCapsule(ctx, id)
	if err != nil {
		return domain.TimeCapsule{}, err
	}
	return mapCapsule(row, recipients), nil
}

func (r *capsulesRepo) ListCapsulesByCreator(ctx context.Context, creatorID string) ([]domain.TimeCapsule, error) {
	rows, err := r.q.ListCapsulesByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	recipientRows, err := r.q.ListRecipientsByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	byCapsule := make(map[string][]string, len(rows))
	for _, rr := range recipientRows {
		byCapsule[rr.CapsuleID] = append(byCapsule[rr.CapsuleID], rr.UserID)
	}

	out := make([]domain.TimeCapsule, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapCapsule(row, byCapsule[row.ID]))
	}
	return out, nil
}
