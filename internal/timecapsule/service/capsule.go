package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store"
	"github.com/aussiebroadwan/timecapsule/pkg/idx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

// CapsuleService stores and lists capsules on behalf of the acting user.
type CapsuleService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// CreateCapsuleInput is the already decoded request. Image is nil when no
// file was uploaded. Recipients is the raw comma-delimited id list.
type CreateCapsuleInput struct {
	Title      string
	Content    string
	Image      []byte
	Recipients string
}

// ListOwnedBy returns the capsules created by userID, newest first. An id
// that owns nothing, or is not an id at all, yields an empty slice.
func (s *CapsuleService) ListOwnedBy(ctx context.Context, userID string) ([]domain.TimeCapsule, error) {
	log := slogx.FromContext(ctx)

	owner := userID
	if id, err := idx.Parse(userID); err == nil {
		owner = id.String()
	}

	capsules, err := s.Store.Capsules().ListCapsulesByCreator(ctx, owner)
	if err != nil {
		log.Error("failed to list capsules",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return capsules, nil
}

// Create persists a capsule attributed to creatorID and returns the stored
// record. creatorID is the acting identity; it is never read from input.
func (s *CapsuleService) Create(ctx context.Context, creatorID string, in CreateCapsuleInput) (domain.TimeCapsule, error) {
	log := slogx.FromContext(ctx)

	creator, err := idx.Parse(creatorID)
	if err != nil {
		return domain.TimeCapsule{}, invalid("creator", "is not a valid user id")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.TimeCapsule{}, invalid("title", "is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.TimeCapsule{}, invalid("content", "is required")
	}

	recipientIDs, err := idx.ParseList(in.Recipients)
	if err != nil {
		return domain.TimeCapsule{}, invalid("recipients", "must be comma separated user ids")
	}
	recipients := make([]string, len(recipientIDs))
	for i, id := range recipientIDs {
		recipients[i] = id.String()
	}

	var image *string
	if in.Image != nil {
		encoded := base64.StdEncoding.EncodeToString(in.Image)
		image = &encoded
	}

	now := s.now()
	capsule := domain.TimeCapsule{
		ID:         idx.NewAt(now).String(),
		CreatorID:  creator.String(),
		Title:      title,
		Content:    in.Content,
		Image:      image,
		Recipients: recipients,
		CreatedAt:  now,
	}

	var stored domain.TimeCapsule
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Capsules().CreateCapsule(ctx, capsule); err != nil {
			return err
		}
		persisted, err := tx.Capsules().GetCapsuleByID(ctx, capsule.ID)
		if err != nil {
			return err
		}
		stored = persisted
		return nil
	})
	if err != nil {
		log.Error("failed to create capsule",
			slog.String("capsule_id", capsule.ID),
			slog.String("creator_id", capsule.CreatorID),
			slog.Any("error", err),
		)
		return domain.TimeCapsule{}, err
	}

	log.Info("capsule created",
		slog.String("capsule_id", stored.ID),
		slog.String("creator_id", stored.CreatorID),
		slog.Int("recipients", len(stored.Recipients)),
	)
	return stored, nil
}

func (s *CapsuleService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
