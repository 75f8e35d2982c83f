// Package ids defines the dense integer identifiers shared by the vocabulary
// tables, the frequency store and the decoders.
package ids

// Syllable indexes a romanized syllable in the syllable table.
type Syllable uint16

// Char indexes a character in the character table.
type Char uint16

// Word indexes a word in the word table.
type Word uint32

// Sentinels. Each is the all-ones value of its width and never a real id.
const (
	InvalidSyllable Syllable = ^Syllable(0)
	InvalidChar     Char     = ^Char(0)
	InvalidWord     Word     = ^Word(0)
)

// Reserved sentence markers. Ids supplied by vocabulary files start at 2.
const (
	SOSChar Char = 0
	EOSChar Char = 1

	SOSWord Word = 0
	EOSWord Word = 1

	// FirstWord is the first id handed out to a real word.
	FirstWord Word = 2
)

// ID is the set of identifier types an n-gram table can be keyed by.
type ID interface {
	~uint16 | ~uint32
}

// Invalid returns the sentinel of T.
func Invalid[T ID]() T { return ^T(0) }

// Pair is an ordered pair of ids, used as a trigram context key.
type Pair[T ID] [2]T
