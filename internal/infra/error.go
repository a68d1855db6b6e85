package infra

import (
	"errors"
	"log/slog"

	"escaperoom-reservations/internal/pkg/errs"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

func NewRepoErr(kind RepositoryErrorKind, msg string) error {
	return RepositoryError{Kind: kind, msg: msg}
}

func WrapRepoErr(kind RepositoryErrorKind, msg string, err error) error {
	if kind == KindStoreFailure {
		slog.Error("store error: "+msg, slog.String("kind", string(kind)))
	}
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Store-level error kinds. VERSION_CONFLICT means an atomic commit was
// rejected because a record's CAS token moved between read and write; it is
// never retried below the caller.
const (
	KindNotFound        RepositoryErrorKind = "NOT_FOUND"
	KindVersionConflict RepositoryErrorKind = "VERSION_CONFLICT"
	KindStoreFailure    RepositoryErrorKind = "STORE_FAILURE"
)
