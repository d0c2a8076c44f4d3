package mmfile

import "errors"

// ErrSharedUnsupported is returned where System V shared memory is not wired.
var ErrSharedUnsupported = errors.New("mmfile: shared memory segments are not supported on this platform")
