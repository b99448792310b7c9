package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/flashbots/go-utils/signature"
	"github.com/ruteri/project-nft-registry/interfaces"
	"go.uber.org/atomic"
)

// Signer signs request bodies on behalf of one address.
type Signer struct {
	signer *signature.Signer
}

// NewSignerFromHex loads a secp256k1 private key given as hex, with or without 0x.
func NewSignerFromHex(privateKey string) (*Signer, error) {
	s, err := signature.NewSignerFromHexPrivateKey(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{signer: s}, nil
}

// NewRandomSigner generates a fresh key.
func NewRandomSigner() (*Signer, error) {
	s, err := signature.NewRandomSigner()
	if err != nil {
		return nil, err
	}
	return &Signer{signer: s}, nil
}

// Address returns the address the signer proves control of.
func (s *Signer) Address() interfaces.Address {
	return s.signer.Address()
}

// Sign returns the SignatureHeader value for a request.
func (s *Signer) Sign(method, path string, nonce uint64, body []byte) (string, error) {
	return s.signer.Create(SignedPayload(method, path, nonce, body))
}

// NonceSource hands out strictly increasing request nonces seeded from the
// wall clock, so that separate processes signing with the same key keep
// increasing as long as the clock does.
type NonceSource struct {
	last atomic.Uint64
}

// Next returns a nonce greater than every nonce previously returned.
func (n *NonceSource) Next() uint64 {
	for {
		last := n.last.Load()
		next := uint64(time.Now().UnixNano())
		if next <= last {
			next = last + 1
		}
		if n.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
