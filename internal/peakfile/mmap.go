package peakfile

import (
	"fmt"
	"io"

	"codeberg.org/go-mmap/mmap"
)

// openMapped memory-maps path and decodes it through an io.SectionReader
// over the mapping, avoiding a full heap copy for large peakfiles. Grounded
// on kelindar-ultima-sdk/internal/uofile.File's use of mmap.File as an
// io.ReaderAt source.
func openMapped(path string, size int64) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("peakfile: mmap %s: %w", path, err)
	}
	defer m.Close()

	r := io.NewSectionReader(m, 0, size)
	return Decode(r)
}
