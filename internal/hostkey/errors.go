package hostkey

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKeyFile is returned by a Reader when no file exists at the path.
	ErrMissingKeyFile = errors.New("host key file does not exist")

	// ErrGenerationFailed wraps any failure to create a new key file.
	ErrGenerationFailed = errors.New("host key generation failed")

	// ErrUnsupportedFamily is returned when a family cannot be generated or parsed.
	ErrUnsupportedFamily = errors.New("unsupported host key family")

	// ErrNoHostKeys means no family produced a usable key.
	ErrNoHostKeys = errors.New("no hostkeys available, specify one with -r <keyfile>")

	// ErrBundleFrozen is returned when a key is added after resolution.
	ErrBundleFrozen = errors.New("host key bundle is frozen")
)

// DuplicateKeyError is returned when strict uniqueness is requested and a
// second key lands in an occupied slot.
type DuplicateKeyError struct {
	Slot Slot
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("only one %s key can be specified", e.Slot)
}
