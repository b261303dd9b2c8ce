package index

import (
	"bytes"

	texio "github.com/TimelordUK/texlog/internal/io"
)

const chunkSize = 64 * 1024

// LineIndex stores byte offsets for each physical line of a transcript
type LineIndex struct {
	offsets []int64 // byte offset of each line start
	file    *texio.MappedFile
}

// BuildLineIndex scans the file and builds a line offset index
func BuildLineIndex(file *texio.MappedFile) (*LineIndex, error) {
	idx := &LineIndex{file: file}
	if err := idx.Rebuild(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Rebuild rescans the whole mapping. Transcripts are rewritten rather than
// appended to, so there is no incremental path.
func (idx *LineIndex) Rebuild() error {
	size := idx.file.Size()

	// Estimate initial capacity (assume ~80 bytes per line, the wrap width)
	offsets := make([]int64, 0, int(size/80)+1)
	offsets = append(offsets, 0)

	buf := make([]byte, chunkSize)
	var pos int64
	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := idx.file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return err
		}

		chunk := buf[:n]
		offset := 0
		for {
			i := bytes.IndexByte(chunk[offset:], '\n')
			if i == -1 {
				break
			}
			lineStart := pos + int64(offset) + int64(i) + 1
			if lineStart < size {
				offsets = append(offsets, lineStart)
			}
			offset += i + 1
		}

		pos += int64(n)
	}

	idx.offsets = offsets
	return nil
}

// LineCount returns the total number of lines
func (idx *LineIndex) LineCount() int {
	return len(idx.offsets)
}

// GetLine returns the content of line at given index (0-based), without its
// line terminator
func (idx *LineIndex) GetLine(lineNum int) ([]byte, error) {
	if lineNum < 0 || lineNum >= len(idx.offsets) {
		return nil, nil
	}

	start := idx.offsets[lineNum]
	end := idx.file.Size()
	if lineNum+1 < len(idx.offsets) {
		end = idx.offsets[lineNum+1]
	}

	content, err := idx.file.ReadRange(start, end)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(content, "\r\n"), nil
}

// GetLines returns up to count lines starting at start
func (idx *LineIndex) GetLines(start, count int) ([][]byte, error) {
	if start < 0 {
		start = 0
	}
	if start >= len(idx.offsets) {
		return nil, nil
	}
	if start+count > len(idx.offsets) {
		count = len(idx.offsets) - start
	}

	lines := make([][]byte, count)
	for i := 0; i < count; i++ {
		line, err := idx.GetLine(start + i)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}

// LineAt returns the 0-based line containing the byte offset, or -1
func (idx *LineIndex) LineAt(offset int64) int {
	if offset < 0 || offset >= idx.file.Size() {
		return -1
	}
	lo, hi := 0, len(idx.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.offsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
