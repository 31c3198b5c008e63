//go:build linux

package source

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential hints the kernel that fh will be read once, front to
// back, so readahead kicks in early on large lexicon dumps. Best effort:
// failures are ignored and the file reads fine without the hint.
func adviseSequential(fh *os.File) {
	_ = unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_WILLNEED)
}
