package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by the engine, the relay or the submission
// flow matches exactly one of them through errors.Is.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrCollision        = errors.New("column is already full")
	ErrAlreadyCompleted = errors.New("game is already completed")
	ErrBadRequest       = errors.New("bad request")
	ErrInternal         = errors.New("internal error")
	ErrNotFound         = errors.New("not found")
)

var (
	ErrInvalidColumn = fmt.Errorf("%w: column is out of range", ErrBadRequest)
	ErrOutOfOrder    = fmt.Errorf("%w: move is out of order", ErrInvalidSignature)
	ErrVerifyOnly    = fmt.Errorf("%w: keys can not sign", ErrBadRequest)
	ErrSelfPlay      = fmt.Errorf("%w: can't play against yourself", ErrBadRequest)
	ErrQueueNotFound = fmt.Errorf("%w: queue not found", ErrBadRequest)
	ErrAlreadyJoined = fmt.Errorf("%w: connection already joined", ErrBadRequest)
	ErrNotYourTurn   = fmt.Errorf("%w: it's not your turn", ErrBadRequest)
	ErrAlreadyExists = errors.New("already exists")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidSignature, "InvalidSignature"},
	{ErrCollision, "Collision"},
	{ErrAlreadyCompleted, "AlreadyCompleted"},
	{ErrBadRequest, "BadRequest"},
	{ErrNotFound, "NotFound"},
	{ErrAlreadyExists, "AlreadyExists"},
	{ErrInternal, "Internal"},
}

// Kind - returns the name of the error kind, "Internal" for unclassified errors.
func Kind(err error) string {
	for _, kind := range kinds {
		if errors.Is(err, kind.err) {
			return kind.name
		}
	}

	return "Internal"
}

// HTTPStatus - maps an error to the status code used by the REST handlers.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrCollision),
		errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
