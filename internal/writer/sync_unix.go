//go:build linux || freebsd

package writer

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync provides sufficient durability on Linux/FreeBSD without
// forcing a metadata flush.
func fdatasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
