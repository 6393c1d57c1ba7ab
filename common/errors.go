package common

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// The error taxonomy. Each error is a unix.Errno so hosts can hand it back
// to the kernel unchanged; operations wrap them with context.
var (
	ErrNoEntry  error = unix.ENOENT
	ErrNotDir   error = unix.ENOTDIR
	ErrIsDir    error = unix.EISDIR
	ErrExist    error = unix.EEXIST
	ErrNotEmpty error = unix.ENOTEMPTY
	ErrInval    error = unix.EINVAL
	ErrNoSpace  error = unix.ENOSPC
	ErrIO       error = unix.EIO
)

// IOErr reports a device failure as ErrIO. The cause is kept in the message
// only, so that an errno carried by the cause cannot mask EIO.
func IOErr(cause error, format string, a ...interface{}) error {
	return errors.Wrapf(ErrIO, "%s: %v", fmt.Sprintf(format, a...), cause)
}

// Errno extracts the errno an operation failed with. Errors outside the
// taxonomy map to EIO.
func Errno(err error) unix.Errno {
	if err == nil {
		return 0
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EIO
}
