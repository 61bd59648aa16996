package mines

import "errors"

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrBadCellRef        = errors.New("malformed cell reference")
)

type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
