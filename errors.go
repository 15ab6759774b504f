package pomodo

import "errors"

// Error kinds. Callers match them with errors.Is; the wrapped message carries the detail.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
)
