package checkpointer

import (
	"fmt"
	"path/filepath"
)

// Filename returns a function which always returns filename, so that
// every checkpoint overwrites the previous one
func Filename(filename string) func() string {
	return func() string { return filename }
}

// Enumerate returns a function which yields dir/<prefix><n><ext> for
// n = 1, 2, 3, ... on consecutive calls. The counter is zero-padded to
// four digits so that the files sort in the order they were written.
func Enumerate(dir, prefix, ext string) func() string {
	n := 0
	return func() string {
		n++
		return filepath.Join(dir, fmt.Sprintf("%v%04d%v", prefix, n, ext))
	}
}
