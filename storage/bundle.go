package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ruteri/project-nft-registry/interfaces"
)

// ErrInvalidBundle is returned for bundles that fail validation.
var ErrInvalidBundle = errors.New("invalid project bundle")

// ProjectBundle is the exported form of a project: its files and the
// conversation that produced them, serialized as one JSON document.
type ProjectBundle struct {
	ProjectID     string         `json:"project_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Owner         string         `json:"owner,omitempty"`
	Files         []ProjectFile  `json:"files"`
	Conversations []Conversation `json:"conversations,omitempty"`
	ExportedAt    time.Time      `json:"exported_at"`
}

// ProjectFile is one file of a project.
type ProjectFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Conversation is one message exchanged while building the project.
type Conversation struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at,omitempty"`
}

// Validate checks that the bundle names a project and that file paths are
// present and unique.
func (b *ProjectBundle) Validate() error {
	if b.ProjectID == "" {
		return fmt.Errorf("%w: missing project id", ErrInvalidBundle)
	}
	seen := make(map[string]struct{}, len(b.Files))
	for i, f := range b.Files {
		if f.Path == "" {
			return fmt.Errorf("%w: file %d has no path", ErrInvalidBundle, i)
		}
		if _, dup := seen[f.Path]; dup {
			return fmt.Errorf("%w: duplicate file %q", ErrInvalidBundle, f.Path)
		}
		seen[f.Path] = struct{}{}
	}
	return nil
}

// Metadata returns the registry metadata for a bundle stored under pointer.
func (b *ProjectBundle) Metadata(pointer string) interfaces.ProjectMetadata {
	return interfaces.ProjectMetadata{ProjectID: b.ProjectID, ContentPointer: pointer}
}

// ExportProject validates and serializes bundle, stores it in backend and
// returns its content pointer. A zero ExportedAt is set to the current time.
func ExportProject(ctx context.Context, backend interfaces.ContentBackend, bundle *ProjectBundle) (string, error) {
	if err := bundle.Validate(); err != nil {
		return "", err
	}
	if bundle.ExportedAt.IsZero() {
		bundle.ExportedAt = time.Now().UTC()
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("could not encode bundle: %w", err)
	}

	pointer, err := backend.Store(ctx, data)
	if err != nil {
		return "", fmt.Errorf("could not store bundle for project %s: %w", bundle.ProjectID, err)
	}
	return pointer, nil
}

// ImportProject fetches, decodes and validates the bundle stored under pointer.
func ImportProject(ctx context.Context, backend interfaces.ContentBackend, pointer string) (*ProjectBundle, error) {
	data, err := backend.Fetch(ctx, pointer)
	if err != nil {
		return nil, err
	}

	var bundle ProjectBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}
