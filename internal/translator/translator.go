// Package translator serves pinyin decoding: it loads a model from disk,
// caches results, fans batches out over a worker pool, and folds user phrases
// kept in Redis into the word models.
package translator

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"pinyin/internal/customdict"
	"pinyin/internal/ids"
	"pinyin/internal/ime"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
	"pinyin/pkg/options"
)

// customFreq is the unigram count given to user phrases.
const customFreq = 1_000_000_000

var (
	// ErrUnsupported means the operation needs a word model.
	ErrUnsupported = errors.New("operation not supported by the char model")
	// ErrInvalidPhrase means a phrase contains characters outside the
	// character table.
	ErrInvalidPhrase = errors.New("phrase is not all known Chinese characters")
)

// Result is the outcome for one input line.
type Result struct {
	Input       string              `json:"input"`
	Text        string              `json:"text,omitempty"`
	Error       string              `json:"error,omitempty"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// engine is an immutable decoder generation. Rebuilds replace it whole.
type engine struct {
	dec    ime.Decoder
	words  *tables.WordTable
	custom map[string]string
	cache  *lru.Cache[string, string]
}

type Translator struct {
	cfg   Config
	opts  []options.Options
	sy    *tables.SyllableTable
	chars *tables.CharTable
	ann   *tables.Annotator
	sugg  *suggester
	dict  *customdict.CustomDict

	// base vocabulary and counts of the word models, without user phrases
	words   *tables.WordTable
	store   *ngram.Store[ids.Word]
	decoder func(*tables.WordTable, *ngram.Store[ids.Word]) (ime.Decoder, error)

	mu  sync.Mutex // serializes rebuilds
	cur atomic.Pointer[engine]
}

// New loads the model files named by cfg. dict may be nil, in which case
// user phrases live only in memory.
func New(cfg Config, dict *customdict.CustomDict) (*Translator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sy, chars, err := tables.LoadPronunciationsFile(cfg.Pronunciations)
	if err != nil {
		return nil, err
	}
	t := &Translator{
		cfg:   cfg,
		opts:  opts,
		sy:    sy,
		chars: chars,
		ann:   tables.NewAnnotator(sy),
		sugg:  newSuggester(cfg.Suggest, sy.Spellings()),
		dict:  dict,
	}

	if cfg.Model == ModelChar {
		s, err := ngram.LoadBigram[ids.Char](cfg.Dict, chars.Len())
		if err != nil {
			return nil, err
		}
		e, err := t.newEngine(ime.NewCharBigram(sy, chars, s, opts...), nil, nil)
		if err != nil {
			return nil, err
		}
		t.cur.Store(e)
		log.Printf("Loaded char model in %s", time.Since(start))
		return t, nil
	}

	if t.words, err = tables.LoadWordsFile(cfg.Words, sy); err != nil {
		return nil, err
	}
	if cfg.Model == ModelTrigram {
		t.store, err = ngram.LoadTrigram[ids.Word](cfg.Dict, t.words.Len())
		t.decoder = func(w *tables.WordTable, s *ngram.Store[ids.Word]) (ime.Decoder, error) {
			d, err := ime.NewWordTrigram(w, s, opts...)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	} else {
		t.store, err = ngram.LoadBigram[ids.Word](cfg.Dict, t.words.Len())
		t.decoder = func(w *tables.WordTable, s *ngram.Store[ids.Word]) (ime.Decoder, error) {
			d, err := ime.NewWordBigram(w, s, opts...)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	}
	if err != nil {
		return nil, err
	}

	custom := t.loadCustomWords()
	e, err := t.build(custom)
	if err != nil {
		return nil, err
	}
	t.cur.Store(e)
	log.Printf("Loaded %s model with %d words and %d custom phrases in %s",
		cfg.Model, t.words.Len(), len(custom), time.Since(start))
	return t, nil
}

func (t *Translator) loadCustomWords() map[string]string {
	custom := make(map[string]string)
	if t.dict == nil {
		return custom
	}
	all, err := t.dict.All()
	if err != nil {
		log.Printf("warning: could not load custom phrases: %v", err)
		return custom
	}
	return all
}

func (t *Translator) newEngine(dec ime.Decoder, words *tables.WordTable, custom map[string]string) (*engine, error) {
	e := &engine{dec: dec, words: words, custom: custom}
	if t.cfg.CacheSize > 0 {
		c, err := lru.New[string, string](t.cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		e.cache = c
	}
	return e, nil
}

// build returns a word decoder generation over the base vocabulary plus
// custom. Nothing is swapped in.
func (t *Translator) build(custom map[string]string) (*engine, error) {
	words := t.words.Clone()
	counts := make(map[ids.Word]uint64, len(custom))
	for _, phrase := range slices.Sorted(maps.Keys(custom)) {
		py, err := t.sy.Split(custom[phrase])
		if err != nil {
			log.Printf("warning: skipping custom phrase %q: %v", phrase, err)
			continue
		}
		id := words.Lookup(phrase)
		if id == ids.InvalidWord {
			id = words.Insert(phrase, py)
		} else {
			words.SetPinyin(id, py)
		}
		counts[id] = customFreq
	}

	dec, err := t.decoder(words, t.store.WithUnigrams(counts))
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	return t.newEngine(dec, words, custom)
}

func (t *Translator) Model() Model { return t.cfg.Model }

// Translate decodes one line of space separated syllables.
func (t *Translator) Translate(line string) (string, error) {
	e := t.cur.Load()
	key := strings.Join(strings.Fields(line), " ")
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			return v, nil
		}
	}
	syllables, err := t.sy.Split(key)
	if err != nil {
		return "", err
	}
	text, err := e.dec.Translate(syllables)
	if err != nil {
		return "", err
	}
	if e.cache != nil {
		e.cache.Add(key, text)
	}
	return text, nil
}

// TranslateLine is Translate with errors folded into the Result. Unknown
// syllables get spelling suggestions.
func (t *Translator) TranslateLine(line string) Result {
	res := Result{Input: line}
	text, err := t.Translate(line)
	if err == nil {
		res.Text = text
		return res
	}
	res.Error = err.Error()
	if errors.Is(err, tables.ErrUnknownSyllable) {
		res.Suggestions = make(map[string][]string)
		for _, tok := range strings.Fields(line) {
			if t.sy.Lookup(tok) == ids.InvalidSyllable {
				res.Suggestions[tok] = t.sugg.Suggest(tok)
			}
		}
	}
	return res
}

// TranslateBatch decodes lines concurrently. Results are in input order.
func (t *Translator) TranslateBatch(lines []string) []Result {
	results := make([]Result, len(lines))
	workers := min(t.cfg.Workers, len(lines))

	var wg sync.WaitGroup
	jobs := make(chan int, len(lines))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = t.TranslateLine(lines[i])
			}
		}()
	}
	for i := range lines {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// Suggest returns known syllables close to token.
func (t *Translator) Suggest(token string) []string {
	return t.sugg.Suggest(token)
}

// CustomWords returns the user phrases of the current generation.
func (t *Translator) CustomWords() map[string]string {
	return maps.Clone(t.cur.Load().custom)
}

// AddCustomWord rebuilds the decoder with phrase, stores the phrase and then
// swaps the new decoder in. A failed rebuild stores nothing. An empty
// spelling is derived from the characters' most common readings.
func (t *Translator) AddCustomWord(phrase, spelling string) error {
	if t.cfg.Model == ModelChar {
		return ErrUnsupported
	}
	phrase = strings.TrimSpace(phrase)
	if !t.chars.IsChinese(phrase) {
		return fmt.Errorf("%w: %q", ErrInvalidPhrase, phrase)
	}
	if strings.TrimSpace(spelling) == "" {
		py, err := t.ann.Annotate(phrase)
		if err != nil {
			return err
		}
		spelling = t.sy.Join(py)
	} else {
		py, err := t.sy.Split(spelling)
		if err != nil {
			return err
		}
		spelling = t.sy.Join(py)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	custom := maps.Clone(t.cur.Load().custom)
	custom[phrase] = spelling
	e, err := t.build(custom)
	if err != nil {
		return err
	}
	if t.dict != nil {
		if err := t.dict.Add(phrase, spelling); err != nil {
			return err
		}
	}
	t.cur.Store(e)
	log.Printf("Added custom phrase %q (%s)", phrase, spelling)
	return nil
}

// RemoveCustomWord drops phrase from the store and the decoder. Removing an
// unknown phrase is not an error.
func (t *Translator) RemoveCustomWord(phrase string) error {
	if t.cfg.Model == ModelChar {
		return ErrUnsupported
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var e *engine
	if cur := t.cur.Load().custom; cur[phrase] != "" {
		custom := maps.Clone(cur)
		delete(custom, phrase)
		var err error
		if e, err = t.build(custom); err != nil {
			return err
		}
	}
	if t.dict != nil {
		if _, err := t.dict.Remove(phrase); err != nil {
			return err
		}
	}
	if e == nil {
		return nil
	}
	t.cur.Store(e)
	log.Printf("Removed custom phrase %q", phrase)
	return nil
}
