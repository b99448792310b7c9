package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/metrics"
	"github.com/ruteri/project-nft-registry/state"
)

// Version identifies the registry build.
const Version = "project-nft v1"

var (
	ErrAlreadyInitialized = interfaces.ErrAlreadyInitialized
	ErrNotInitialized     = interfaces.ErrNotInitialized
	ErrNotAdmin           = interfaces.ErrNotAdmin
	ErrTokenNotFound      = interfaces.ErrTokenNotFound
	ErrNotTokenOwner      = interfaces.ErrNotTokenOwner
	ErrStaleNonce         = interfaces.ErrStaleNonce

	// ErrTokenIDExhausted is returned by Mint once the id counter cannot advance.
	ErrTokenIDExhausted = errors.New("token id space exhausted")
)

var _ interfaces.ProjectRegistry = (*Registry)(nil)

// Registry is the project NFT registry service.
type Registry struct {
	mu         sync.Mutex
	store      interfaces.KVStore
	authorizer interfaces.Authorizer
	log        *slog.Logger
	metrics    *metrics.RegistryMetrics
}

// NewRegistry creates a registry over store. All state lives in store; the
// service keeps nothing between calls.
func NewRegistry(store interfaces.KVStore, authorizer interfaces.Authorizer, log *slog.Logger) *Registry {
	return &Registry{
		store:      store,
		authorizer: authorizer,
		log:        log,
	}
}

// WithMetrics attaches operation counters. A nil value disables them.
func (r *Registry) WithMetrics(m *metrics.RegistryMetrics) *Registry {
	r.metrics = m
	return r
}

func (r *Registry) Initialize(ctx context.Context, admin interfaces.Address) (err error) {
	defer r.observe("initialize", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	m := state.NewMutable(r.store)
	initialized, err := state.HasAdmin(ctx, m)
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	authz, err := r.authorizer.RequireAuth(ctx, admin)
	if err != nil {
		return err
	}
	if err := consumeNonce(ctx, m, authz); err != nil {
		return err
	}

	if err := state.SetAdmin(ctx, m, admin); err != nil {
		return err
	}
	if err := state.SetNextTokenID(ctx, m, interfaces.FirstTokenID); err != nil {
		return err
	}
	if err := m.Commit(ctx, r.store); err != nil {
		return fmt.Errorf("could not commit initialize: %w", err)
	}

	r.log.Info("registry initialized", "admin", admin.Hex())
	return nil
}

func (r *Registry) Mint(ctx context.Context, to interfaces.Address, projectID string, contentPointer string) (_ interfaces.TokenID, err error) {
	defer r.observe("mint", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	m := state.NewMutable(r.store)
	admin, initialized, err := state.GetAdmin(ctx, m)
	if err != nil {
		return 0, err
	}
	if !initialized {
		return 0, ErrNotInitialized
	}

	authz, err := r.authorizer.RequireAuth(ctx, admin)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotAdmin, err)
	}
	if err := consumeNonce(ctx, m, authz); err != nil {
		return 0, err
	}

	tokenID, err := state.GetNextTokenID(ctx, m)
	if err != nil {
		return 0, err
	}
	if tokenID == math.MaxUint64 {
		return 0, ErrTokenIDExhausted
	}

	if err := state.SetOwner(ctx, m, tokenID, to); err != nil {
		return 0, err
	}
	meta := interfaces.ProjectMetadata{ProjectID: projectID, ContentPointer: contentPointer}
	if err := state.SetMetadata(ctx, m, tokenID, meta); err != nil {
		return 0, err
	}
	if err := state.SetNextTokenID(ctx, m, tokenID+1); err != nil {
		return 0, err
	}
	if err := m.Commit(ctx, r.store); err != nil {
		return 0, fmt.Errorf("could not commit mint: %w", err)
	}

	r.metrics.SetNextTokenID(uint64(tokenID + 1))
	r.log.Info("token minted", "token_id", tokenID, "to", to.Hex(), "project_id", projectID, "content_pointer", contentPointer)
	return tokenID, nil
}

func (r *Registry) Transfer(ctx context.Context, from interfaces.Address, to interfaces.Address, tokenID interfaces.TokenID) (err error) {
	defer r.observe("transfer", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	m := state.NewMutable(r.store)
	owner, minted, err := state.GetOwner(ctx, m, tokenID)
	if err != nil {
		return err
	}
	if !minted {
		return ErrTokenNotFound
	}

	// Authorization always runs before the ownership comparison.
	authz, err := r.authorizer.RequireAuth(ctx, from)
	if err != nil {
		return err
	}
	if owner != from {
		return ErrNotTokenOwner
	}
	if err := consumeNonce(ctx, m, authz); err != nil {
		return err
	}

	if err := state.SetOwner(ctx, m, tokenID, to); err != nil {
		return err
	}
	if err := m.Commit(ctx, r.store); err != nil {
		return fmt.Errorf("could not commit transfer: %w", err)
	}

	r.log.Info("token transferred", "token_id", tokenID, "from", from.Hex(), "to", to.Hex())
	return nil
}

func (r *Registry) OwnerOf(ctx context.Context, tokenID interfaces.TokenID) (_ interfaces.Address, err error) {
	defer r.observe("owner_of", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, minted, err := state.GetOwner(ctx, state.NewMutable(r.store), tokenID)
	if err != nil {
		return interfaces.Address{}, err
	}
	if !minted {
		return interfaces.Address{}, ErrTokenNotFound
	}
	return owner, nil
}

func (r *Registry) GetMetadata(ctx context.Context, tokenID interfaces.TokenID) (_ interfaces.ProjectMetadata, err error) {
	defer r.observe("get_metadata", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	meta, minted, err := state.GetMetadata(ctx, state.NewMutable(r.store), tokenID)
	if err != nil {
		return interfaces.ProjectMetadata{}, err
	}
	if !minted {
		return interfaces.ProjectMetadata{}, ErrTokenNotFound
	}
	return meta, nil
}

// consumeNonce stages the authorization's nonce in m so that it is committed
// together with the operation it authorized.
func consumeNonce(ctx context.Context, m *state.Mutable, authz interfaces.Authorization) error {
	if authz.Nonce == 0 {
		return nil
	}
	return state.ConsumeNonce(ctx, m, authz.Signer, authz.Nonce)
}

func (r *Registry) Version() string {
	return Version
}

func (r *Registry) observe(operation string, errp *error) {
	r.metrics.ObserveOperation(operation, resultLabel(*errp))
	if *errp != nil {
		r.log.Debug("registry operation failed", "operation", operation, "err", *errp)
	}
}

// resultLabel maps an operation outcome to a low-cardinality metric label.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, ErrStaleNonce) {
		return "stale_nonce"
	}
	var regErr interfaces.RegistryError
	if errors.As(err, &regErr) {
		switch regErr {
		case ErrAlreadyInitialized:
			return "already_initialized"
		case ErrNotInitialized:
			return "not_initialized"
		case ErrNotAdmin:
			return "not_admin"
		case ErrTokenNotFound:
			return "token_not_found"
		case ErrNotTokenOwner:
			return "not_token_owner"
		}
	}
	return "error"
}
