package metainfo

// BlockSize is the conventional 16 KiB block used to pipeline piece
// requests.
const BlockSize = 16 * 1024

// PieceCount is the number of pieces in the torrent.
func (m *Metainfo) PieceCount() int {
	return len(m.PieceHashes)
}

// PieceLen returns the nominal length of piece index i: PieceLength for all
// but the last piece, and the remainder for the last piece.
func (m *Metainfo) PieceLen(index int) int64 {
	if index == m.PieceCount()-1 {
		last := m.Length - int64(index)*m.PieceLength
		return last
	}
	return m.PieceLength
}

// PieceOffset returns the absolute byte offset of piece index i in the
// assembled file.
func (m *Metainfo) PieceOffset(index int) int64 {
	return int64(index) * m.PieceLength
}

// Block describes one block-wise request/assembly unit within a piece.
type Block struct {
	Begin  int64
	Length int64
}

// BlocksForPiece splits a piece of the given length into BlockSize chunks
// starting at offset 0, with a possibly-short final block.
func BlocksForPiece(pieceLen int64) []Block {
	var blocks []Block
	for begin := int64(0); begin < pieceLen; begin += BlockSize {
		length := int64(BlockSize)
		if pieceLen-begin < length {
			length = pieceLen - begin
		}
		blocks = append(blocks, Block{Begin: begin, Length: length})
	}
	return blocks
}
