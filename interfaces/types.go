package interfaces

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account able to own tokens or administer the registry.
type Address = common.Address

// ParseAddress parses a 40-char hex address with or without the 0x prefix.
func ParseAddress(addr string) (Address, error) {
	clean := strings.TrimSpace(addr)
	if !strings.HasPrefix(clean, "0x") && !strings.HasPrefix(clean, "0X") {
		clean = "0x" + clean
	}
	if !common.IsHexAddress(clean) {
		return Address{}, fmt.Errorf("invalid address %q: must be 40 hex characters", addr)
	}
	return common.HexToAddress(clean), nil
}

// TokenID is the sequential identifier assigned to a minted project token.
type TokenID uint64

// FirstTokenID is the id handed out by the first successful mint.
const FirstTokenID TokenID = 1

// ParseTokenID parses a base-10 token id.
func ParseTokenID(s string) (TokenID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return TokenID(id), nil
}

// String returns the base-10 representation.
func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ProjectMetadata is attached to a token at mint time and never changes.
type ProjectMetadata struct {
	// ProjectID identifies the project off-registry.
	ProjectID string `json:"project_id"`

	// ContentPointer references the exported project content, e.g. an IPFS CID.
	ContentPointer string `json:"content_pointer"`
}

// Validate checks that both fields are present.
func (m ProjectMetadata) Validate() error {
	if m.ProjectID == "" {
		return errors.New("project id is required")
	}
	if m.ContentPointer == "" {
		return errors.New("content pointer is required")
	}
	return nil
}
