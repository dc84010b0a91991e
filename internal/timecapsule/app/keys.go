package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/timecapsule/pkg/cryptox"
	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
)

// AuthKeys holds everything needed to issue and check access tokens.
type AuthKeys struct {
	KeySet   *jwtx.KeySet
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
}

// InitAuthKeys loads the Ed25519 signing key for jwt mode. It returns nil in
// identifier mode.
//
// With AUTH_KEY_FILE set, the key is read from that PKCS8 PEM file, and
// generated and written there on first start. Without it an ephemeral key is
// generated and every token becomes invalid on restart.
func InitAuthKeys(cfg Auth, logger *slog.Logger) (*AuthKeys, error) {
	if cfg.Mode != AuthModeJWT {
		return nil, nil
	}

	var (
		pemKey []byte
		err    error
	)
	if cfg.KeyFile != "" {
		pemKey, err = cryptox.LoadOrGenerateEd25519Key(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
	} else {
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		logger.Warn("generated ephemeral signing key - access tokens will not survive a restart")
	}

	signer, err := jwtx.NewSignerEdDSA("", pemKey)
	if err != nil {
		return nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, err
	}

	logger.Info("signing key ready",
		"algorithm", signer.Alg(),
		"kid", signer.KID(),
		"issuer", cfg.Issuer,
	)

	return &AuthKeys{
		KeySet:   keys,
		Signer:   signer,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer),
	}, nil
}
