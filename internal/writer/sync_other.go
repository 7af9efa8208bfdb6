//go:build !linux && !freebsd

package writer

import "os"

func fdatasync(f *os.File) error {
	return f.Sync()
}
