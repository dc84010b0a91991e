package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet is the set of public keys access tokens are verified against and
// published from. It is safe for concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	keys []JWK
	byID map[string]ed25519.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{byID: make(map[string]ed25519.PublicKey)}
}

// AddSigner publishes the signer's public half.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK adds an Ed25519 public key. A kid that is already present is
// replaced.
func (k *KeySet) AddJWK(j JWK) error {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return fmt.Errorf("jwtx: unsupported key %s/%s", j.Kty, j.Crv)
	}
	x, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return fmt.Errorf("jwtx: decode x: %w", err)
	}
	if len(x) != ed25519.PublicKeySize {
		return errors.New("jwtx: invalid Ed25519 public key size")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.byID[j.Kid]; ok {
		for i := range k.keys {
			if k.keys[i].Kid == j.Kid {
				k.keys = append(k.keys[:i], k.keys[i+1:]...)
				break
			}
		}
	}
	k.byID[j.Kid] = ed25519.PublicKey(x)
	k.keys = append(k.keys, j)
	return nil
}

func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pub, ok := k.byID[kid]
	if !ok {
		return nil, ErrNoKey
	}
	return pub, nil
}

// PublicJWKS returns a copy safe to serialise after the lock is released.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK{}, k.keys...)}
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}
