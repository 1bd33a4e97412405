//go:build unix

package detect

import "golang.org/x/sys/unix"

// canExecute reports whether the current user may execute the file.
func canExecute(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}
