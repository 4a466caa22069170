package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/renning22/fmcp/pkg/models"
)

// SessionRepository defines the interface for training session storage
type SessionRepository interface {
	Get(ctx context.Context, id string) (models.SessionState, error)
	Save(ctx context.Context, state models.SessionState) error
	Delete(ctx context.Context, id string) error
	// Lock serialises operations on one session. The returned func releases it.
	Lock(ctx context.Context, id string) (Unlock, error)
	Ping(ctx context.Context) error
}

// Unlock releases a session lock.
type Unlock func()

func errSessionNotFound(id string) error {
	return httperror.NewHTTPErrorf(http.StatusNotFound, "training session %s not found", id)
}

func errSessionBusy(id string) error {
	return httperror.NewHTTPErrorf(http.StatusConflict, "training session %s is busy, try again", id)
}

func encode(state models.SessionState) ([]byte, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return b, nil
}

func decode(b []byte) (models.SessionState, error) {
	var state models.SessionState
	if err := json.Unmarshal(b, &state); err != nil {
		return models.SessionState{}, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return state, nil
}
