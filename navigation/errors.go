package navigation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex = errors.New("tab index out of range")
	ErrEmptyTabSet  = errors.New("cannot close the last remaining tab")
)

// FetchError records a failed page load. The tab that issued it shows an
// error page; history is left as it was.
type FetchError struct {
	Target Target
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Target, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func invalidIndex(index, n int) error {
	return fmt.Errorf("%w: %d (have %d tabs)", ErrInvalidIndex, index, n)
}
