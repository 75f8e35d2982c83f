package ngram

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"pinyin/internal/ids"
	"pinyin/internal/varint"
)

// Dictionary file layout, one record per id in ascending order, sos and eos
// included. All integers are LEB128; id lists are delta-coded from 0.
//
// Bigram record:
//
//	unigram
//	n1, n1 x delta(b)                       successors with count 1
//	n2, n2 x (delta(b), count)              other successors
//
// Trigram record:
//
//	unigram
//	n1, n1 x (delta(b), c)                  count 1; c is the single
//	                                        continuation, sos if none
//	n2, n2 x (delta(b), residual,
//	          m1, m1 x delta(c),            trigram count 1
//	          m2, m2 x (delta(c), count))   other trigram counts
//
// The bigram count of an "other" successor is residual plus the listed
// trigram counts. The residual is not attached to any continuation.

var (
	// ErrTrailingData means bytes remain after the last record: the file and
	// the vocabulary disagree.
	ErrTrailingData = errors.New("ngram: trailing data after last record")
	// ErrCorrupt means a record decoded to an impossible value.
	ErrCorrupt = errors.New("ngram: corrupt dictionary")
)

type successor[T ids.ID] struct {
	id    T
	count uint64
}

func sortedSuccessors[T ids.ID](s *Store[T], a T) []successor[T] {
	var out []successor[T]
	s.EachBigram(a, func(b T, c uint64) {
		out = append(out, successor[T]{b, c})
	})
	slices.SortFunc(out, func(x, y successor[T]) int { return cmp.Compare(x.id, y.id) })
	return out
}

func sortedContinuations[T ids.ID](s *Store[T], a, b T) []successor[T] {
	var out []successor[T]
	s.EachTrigram(a, b, func(c T, n uint64) {
		out = append(out, successor[T]{c, n})
	})
	slices.SortFunc(out, func(x, y successor[T]) int { return cmp.Compare(x.id, y.id) })
	return out
}

func split[T ids.ID](list []successor[T]) (ones, others []successor[T]) {
	for _, e := range list {
		if e.count == 1 {
			ones = append(ones, e)
		} else {
			others = append(others, e)
		}
	}
	return ones, others
}

// writeList writes the length of list and its ids delta coded. fields, when
// set, writes whatever follows each id.
func writeList[T ids.ID](vw *varint.Writer, list []successor[T], fields func(successor[T]) error) error {
	vw.Uint(uint64(len(list)))
	d := varint.NewDelta(vw)
	for _, e := range list {
		d.Next(uint64(e.id))
		if fields == nil {
			continue
		}
		if err := fields(e); err != nil {
			return err
		}
	}
	return d.Err()
}

// WriteBigram encodes every record of s in bigram layout.
func WriteBigram[T ids.ID](w io.Writer, s *Store[T]) error {
	vw := varint.NewWriter(w)
	count := func(e successor[T]) error {
		vw.Uint(e.count)
		return nil
	}
	for i := range s.Len() {
		a := T(i)
		vw.Uint(s.Unigram(a))
		ones, others := split(sortedSuccessors(s, a))
		if err := writeList(vw, ones, nil); err != nil {
			return fmt.Errorf("record %d: %w", a, err)
		}
		if err := writeList(vw, others, count); err != nil {
			return fmt.Errorf("record %d: %w", a, err)
		}
	}
	return vw.Flush()
}

// WriteTrigram encodes every record of s in trigram layout. s must carry
// trigram counts.
func WriteTrigram[T ids.ID](w io.Writer, s *Store[T]) error {
	if !s.HasTrigrams() {
		return fmt.Errorf("ngram: store has no trigram counts")
	}
	vw := varint.NewWriter(w)
	count := func(e successor[T]) error {
		vw.Uint(e.count)
		return nil
	}
	for i := range s.Len() {
		a := T(i)
		vw.Uint(s.Unigram(a))
		ones, others := split(sortedSuccessors(s, a))

		err := writeList(vw, ones, func(e successor[T]) error {
			third := uint64(ids.SOSWord)
			conts := sortedContinuations(s, a, e.id)
			switch len(conts) {
			case 0:
			case 1:
				third = uint64(conts[0].id)
			default:
				return fmt.Errorf("%w: bigram %d %d has count 1 but %d continuations", ErrCorrupt, a, e.id, len(conts))
			}
			vw.Uint(third)
			return nil
		})
		if err != nil {
			return fmt.Errorf("record %d: %w", a, err)
		}

		err = writeList(vw, others, func(e successor[T]) error {
			conts := sortedContinuations(s, a, e.id)
			residual := e.count
			for _, c := range conts {
				if c.count > residual {
					return fmt.Errorf("%w: trigrams of %d %d exceed bigram count", ErrCorrupt, a, e.id)
				}
				residual -= c.count
			}
			vw.Uint(residual)

			triOnes, triOthers := split(conts)
			if err := writeList(vw, triOnes, nil); err != nil {
				return err
			}
			return writeList(vw, triOthers, count)
		})
		if err != nil {
			return fmt.Errorf("record %d: %w", a, err)
		}
	}
	return vw.Flush()
}

type decoder[T ids.ID] struct {
	r    *varint.Reader
	size int
	rec  int
}

func (d *decoder[T]) uint() (uint64, error) {
	v, err := d.r.Uint()
	if err != nil {
		return 0, fmt.Errorf("record %d: %w", d.rec, err)
	}
	return v, nil
}

func (d *decoder[T]) count() (uint64, error) {
	v, err := d.uint()
	if err == nil && v == 0 {
		err = fmt.Errorf("%w: record %d: zero count", ErrCorrupt, d.rec)
	}
	return v, err
}

func (d *decoder[T]) id(u *varint.Undelta) (T, error) {
	v, err := u.Next()
	if err != nil {
		return 0, fmt.Errorf("record %d: %w", d.rec, err)
	}
	return d.check(v)
}

func (d *decoder[T]) check(v uint64) (T, error) {
	if v >= uint64(d.size) {
		return 0, fmt.Errorf("%w: record %d: id %d outside vocabulary of %d", ErrCorrupt, d.rec, v, d.size)
	}
	return T(v), nil
}

func (d *decoder[T]) finish() error {
	if !d.r.Done() {
		return fmt.Errorf("%w: %d bytes after %d records", ErrTrailingData, d.r.Remaining(), d.size)
	}
	return nil
}

// DecodeBigram decodes size bigram-layout records from data.
func DecodeBigram[T ids.ID](data []byte, size int) (*Store[T], error) {
	s := newStore[T](size, false)
	d := &decoder[T]{r: varint.NewReader(data), size: size}
	for ; d.rec < size; d.rec++ {
		a := T(d.rec)
		uni, err := d.uint()
		if err != nil {
			return nil, err
		}
		s.unigram[a] = uni
		s.total += uni

		n, err := d.uint()
		if err != nil {
			return nil, err
		}
		u := varint.NewUndelta(d.r)
		for range n {
			b, err := d.id(u)
			if err != nil {
				return nil, err
			}
			s.setBigram(a, b, 1)
		}

		if n, err = d.uint(); err != nil {
			return nil, err
		}
		u = varint.NewUndelta(d.r)
		for range n {
			b, err := d.id(u)
			if err != nil {
				return nil, err
			}
			c, err := d.count()
			if err != nil {
				return nil, err
			}
			s.setBigram(a, b, c)
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeTrigram decodes size trigram-layout records from data.
func DecodeTrigram[T ids.ID](data []byte, size int) (*Store[T], error) {
	s := newStore[T](size, true)
	d := &decoder[T]{r: varint.NewReader(data), size: size}
	sos := T(ids.SOSWord)
	for ; d.rec < size; d.rec++ {
		a := T(d.rec)
		uni, err := d.uint()
		if err != nil {
			return nil, err
		}
		s.unigram[a] = uni
		s.total += uni

		n, err := d.uint()
		if err != nil {
			return nil, err
		}
		u := varint.NewUndelta(d.r)
		for range n {
			b, err := d.id(u)
			if err != nil {
				return nil, err
			}
			raw, err := d.uint()
			if err != nil {
				return nil, err
			}
			c, err := d.check(raw)
			if err != nil {
				return nil, err
			}
			s.setBigram(a, b, 1)
			if c != sos {
				s.setTrigram(a, b, c, 1)
			}
		}

		if n, err = d.uint(); err != nil {
			return nil, err
		}
		u = varint.NewUndelta(d.r)
		for range n {
			b, err := d.id(u)
			if err != nil {
				return nil, err
			}
			bi, err := d.uint()
			if err != nil {
				return nil, err
			}

			m, err := d.uint()
			if err != nil {
				return nil, err
			}
			tu := varint.NewUndelta(d.r)
			for range m {
				c, err := d.id(tu)
				if err != nil {
					return nil, err
				}
				s.setTrigram(a, b, c, 1)
				bi++
			}

			if m, err = d.uint(); err != nil {
				return nil, err
			}
			tu = varint.NewUndelta(d.r)
			for range m {
				c, err := d.id(tu)
				if err != nil {
					return nil, err
				}
				tri, err := d.count()
				if err != nil {
					return nil, err
				}
				s.setTrigram(a, b, c, tri)
				bi += tri
			}
			if bi == 0 {
				return nil, fmt.Errorf("%w: record %d: zero bigram count for %d", ErrCorrupt, d.rec, b)
			}
			s.setBigram(a, b, bi)
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return s, nil
}
