package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is matched by every *NetworkError.
	ErrNetwork = errors.New("network failure")
	// ErrNotArchive means the server answered with something other than a file download.
	ErrNotArchive = errors.New("response is not an archive")
)

// NetworkError describes a failed download. StatusCode is 0 for transport errors.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return ErrNetwork.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNetwork) match.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
