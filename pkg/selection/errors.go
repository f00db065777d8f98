package selection

import "errors"

var (
	ErrInvalidCount  = errors.New("invalid selection count")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrNotFitted     = errors.New("selection has not been fitted")
)
