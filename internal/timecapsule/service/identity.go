package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store"
	"github.com/aussiebroadwan/timecapsule/pkg/cryptox"
	"github.com/aussiebroadwan/timecapsule/pkg/idx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

// IdentityService registers users and verifies their passwords.
type IdentityService struct {
	Store  store.Store
	Hasher cryptox.PasswordHasher

	// Now defaults to time.Now.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Register creates a user and returns its id. The existence check and the
// insert share one transaction; the UNIQUE constraints catch any race the
// check misses.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) (string, error) {
	log := slogx.FromContext(ctx)

	switch {
	case strings.TrimSpace(username) == "":
		return "", invalid("username", "is required")
	case strings.TrimSpace(email) == "":
		return "", invalid("email", "is required")
	case password == "":
		return "", invalid("password", "is required")
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return "", err
	}

	now := s.now()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		taken, err := tx.Users().ExistsByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}
		return tx.Users().CreateUser(ctx, user)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict), errors.Is(err, store.ErrAlreadyExists):
		log.Warn("registration rejected, username or email taken",
			slog.String("username", username),
		)
		return "", ErrConflict
	default:
		log.Error("failed to create user", slog.Any("error", err))
		return "", err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)
	return user.ID, nil
}

// Authenticate returns the user matching username and password. An unknown
// username and a wrong password both yield ErrInvalidCredentials.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same hashing work as a real check.
			_ = cryptox.VerifyPassword(password, s.dummy(log))
			log.Warn("login failed", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash unusable",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
		log.Warn("login failed", slog.String("username", username))
		return domain.User{}, ErrInvalidCredentials
	}

	log.Info("user authenticated", slog.String("user_id", user.ID))
	return user, nil
}

// fallbackDummyHash is a well-formed bcrypt hash used when the configured
// hasher cannot produce one, so unknown usernames still cost a full compare.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *IdentityService) dummy(log *slog.Logger) string {
	s.dummyOnce.Do(func() {
		hash, err := s.Hasher.Hash("timecapsule-dummy-password")
		if err != nil {
			log.Error("failed to hash dummy password, using fallback", slog.Any("error", err))
			hash = fallbackDummyHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *IdentityService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
