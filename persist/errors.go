package persist

import (
	"errors"
	"fmt"

	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
)

func typed(kind types.ErrKind, path *pathTrace, msg string, args ...any) error {
	return &types.Error{
		Kind: kind,
		Msg:  fmt.Sprintf(msg, args...),
		Path: path.String(),
	}
}

// convertWriteErr maps low-level write failures onto the public error
// taxonomy. Errors already typed pass through untouched.
func convertWriteErr(err error, path *pathTrace) error {
	if err == nil {
		return nil
	}
	var te *types.Error
	if errors.As(err, &te) {
		return err
	}
	return &types.Error{Kind: types.ErrKindIO, Msg: "persist failed", Path: path.String(), Err: err}
}

// convertReadErr maps low-level read failures onto the public error
// taxonomy: short sources are I/O failures, header mismatches are
// format errors, everything else from the codec layer is corruption.
func convertReadErr(err error, path *pathTrace) error {
	if err == nil {
		return nil
	}
	var te *types.Error
	if errors.As(err, &te) {
		return err
	}
	e := &types.Error{Msg: "unpersist failed", Path: path.String(), Err: err}
	switch {
	case errors.Is(err, format.ErrTruncated):
		e.Kind = types.ErrKindIO
	case errors.Is(err, format.ErrSignatureMismatch):
		return &types.Error{Kind: types.ErrKindFormat, Msg: types.ErrNotDump.Msg, Err: err}
	case errors.Is(err, format.ErrWidthMismatch),
		errors.Is(err, format.ErrCanary),
		errors.Is(err, format.ErrVersion):
		return &types.Error{Kind: types.ErrKindFormat, Msg: types.ErrIncompatible.Msg, Err: err}
	default:
		e.Kind = types.ErrKindCorrupt
	}
	return e
}
