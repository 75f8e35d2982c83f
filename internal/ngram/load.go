package ngram

import (
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"pinyin/internal/ids"
)

// LoadBigram maps the dictionary file at path and decodes size bigram
// records from it.
func LoadBigram[T ids.ID](path string, size int) (*Store[T], error) {
	return load(path, size, DecodeBigram[T])
}

// LoadTrigram maps the dictionary file at path and decodes size trigram
// records from it.
func LoadTrigram[T ids.ID](path string, size int) (*Store[T], error) {
	return load(path, size, DecodeTrigram[T])
}

func load[T ids.ID](path string, size int, decode func([]byte, int) (*Store[T], error)) (*Store[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dictionary: %w", err)
	}
	// Empty files cannot be mapped.
	if info.Size() == 0 {
		s, err := decode(nil, size)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return s, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dictionary: %w", err)
	}
	// Decoding copies everything into the store, so the mapping is released
	// before returning.
	defer m.Unmap()

	s, err := decode(m, size)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

// SaveBigram writes s to path in bigram layout.
func SaveBigram[T ids.ID](path string, s *Store[T]) error {
	return save(path, s, WriteBigram[T])
}

// SaveTrigram writes s to path in trigram layout.
func SaveTrigram[T ids.ID](path string, s *Store[T]) error {
	return save(path, s, WriteTrigram[T])
}

func save[T ids.ID](path string, s *Store[T], write func(io.Writer, *Store[T]) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dictionary: %w", err)
	}
	if err := write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
