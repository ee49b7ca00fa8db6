package spatialgraph

import (
	"github.com/pkg/errors"

	"go.viam.com/sam/symbol"
)

var (
	// ErrUnknownFrame is returned when an operation names a frame the graph
	// does not hold.
	ErrUnknownFrame = errors.New("unknown frame")

	// ErrItemNotFound is returned when a frame exists but holds no item of
	// the requested kind.
	ErrItemNotFound = errors.New("item not found")

	// ErrFrameExists is returned when adding a frame that is already in the
	// graph.
	ErrFrameExists = errors.New("frame already exists")
)

// NewUnknownFrameError returns an error for an operation on a missing frame.
func NewUnknownFrameError(id symbol.Symbol) error {
	return errors.Wrapf(ErrUnknownFrame, "frame %s", id)
}

// NewItemNotFoundError returns an error for a frame without the wanted item.
func NewItemNotFoundError(id symbol.Symbol, what string) error {
	return errors.Wrapf(ErrItemNotFound, "frame %s has no %s", id, what)
}

// NewFrameExistsError returns an error for adding a duplicate frame.
func NewFrameExistsError(id symbol.Symbol) error {
	return errors.Wrapf(ErrFrameExists, "frame %s", id)
}
