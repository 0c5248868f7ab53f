package jwtcookie

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SyncIdentityMessage carries decoded JWT claims to be applied to the local
// user record outside of a request, e.g. from a session replay or a backfill
// job.
type SyncIdentityMessage struct {
	Claims Claims `json:"claims"`
}

func (e SyncIdentityMessage) Type() string { return "identity.sync" }

type SyncIdentityHandler struct {
	identities IdentityStore
}

func NewSyncIdentityHandler(identities IdentityStore) *SyncIdentityHandler {
	return &SyncIdentityHandler{identities: identities}
}

func (h *SyncIdentityHandler) Execute(ctx context.Context, event SyncIdentityMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during identity sync",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SyncIdentityHandler) execute(ctx context.Context, event SyncIdentityMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if _, err := h.identities.Resolve(ctx, event.Claims); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "identity sync failed")
	}

	return nil
}
