// Package torrent drives single-piece and whole-file downloads against one
// peer session and commits verified pieces to disk.
package torrent

import (
	"fmt"
	"os"
)

// WritePieceFile writes a single verified piece's bytes to path, creating
// or truncating it.
func WritePieceFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("torrent: writing %s: %w", path, err)
	}
	return nil
}

// assembler owns the destination file for a whole-file download: pieces
// are written at their fixed offset only after SHA-1 verification passes,
// so a reader can never observe unverified bytes.
type assembler struct {
	f *os.File
}

func newAssembler(path string, totalLength int64) (*assembler, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("torrent: opening %s: %w", path, err)
	}
	if err := f.Truncate(totalLength); err != nil {
		f.Close()
		return nil, fmt.Errorf("torrent: sizing %s: %w", path, err)
	}
	return &assembler{f: f}, nil
}

func (a *assembler) writeAt(offset int64, data []byte) error {
	if _, err := a.f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("torrent: writing piece at offset %d: %w", offset, err)
	}
	return nil
}

func (a *assembler) close() error {
	return a.f.Close()
}
