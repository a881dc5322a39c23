package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// SaveMatrix writes the embedding matrix to path atomically (write to a temp
// file, then rename), so a crash never leaves a partially written file.
// Format: dimensions (uint32), row count (uint32), then rows of
// dimensions*4 little-endian float32 bytes.
func SaveMatrix(path string, matrix [][]float32) error {
	if len(matrix) == 0 {
		return fmt.Errorf("refusing to save empty matrix")
	}
	dims := len(matrix[0])
	for i, row := range matrix {
		if len(row) != dims {
			return fmt.Errorf("row %d has dimension %d, expected %d", i, len(row), dims)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create matrix dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".embeddings-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := binary.Write(tmp, binary.LittleEndian, uint32(dims)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(tmp, binary.LittleEndian, uint32(len(matrix))); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write count: %w", err)
	}
	for i, row := range matrix {
		if _, err := tmp.Write(float32SliceToBytes(row)); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename matrix file: %w", err)
	}
	return nil
}

// LoadMatrix reads a matrix written by SaveMatrix. Structural problems
// (short reads, truncated rows) are returned as errors, never as a
// silently truncated matrix.
func LoadMatrix(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matrix file: %w", err)
	}
	defer f.Close()

	var dims, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	if dims == 0 {
		return nil, fmt.Errorf("matrix file has zero dimensions")
	}
	matrix := make([][]float32, 0, n)
	buf := make([]byte, int(dims)*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		matrix = append(matrix, bytesToFloat32Slice(buf))
	}
	return matrix, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
