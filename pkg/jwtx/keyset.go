package jwtx

import (
	"crypto/rsa"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet caches RSA verification keys by kid. Safe for concurrent use.
type KeySet struct {
	mu  sync.RWMutex
	pub map[string]*rsa.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]*rsa.PublicKey)}
}

// Get returns the public key for kid.
func (k *KeySet) Get(kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// ResetFromJWKS replaces every key. Keys with an unsupported type or broken
// material are skipped; an error is returned only when nothing usable remains.
func (k *KeySet) ResetFromJWKS(set JWKS) error {
	next := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, j := range set.Keys {
		pub, err := j.RSAPublicKey()
		if err != nil || j.Kid == "" {
			continue
		}
		next[j.Kid] = pub
	}
	if len(next) == 0 {
		return errors.New("jwtx: key set has no usable rsa keys")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	return nil
}
