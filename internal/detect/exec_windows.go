//go:build windows

package detect

import "os"

// canExecute reports whether the path points at an existing file.
// Windows has no execute bit; extension checks are left to the shell.
func canExecute(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
