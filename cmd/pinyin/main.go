package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pinyin/internal/ngram"
	"pinyin/internal/tables"
	"pinyin/internal/train"
	"pinyin/internal/translator"
	"pinyin/pkg/options"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s {run, make-dict} [options]\n", os.Args[0])
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "run":
		err = run(os.Args[2:])
	case "make-dict":
		err = makeDict(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run translates syllable lines from stdin. Failed lines are reported on
// stderr and produce no output.
func run(args []string) error {
	def := translator.DefaultConfig()
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	model := fs.String("model", string(def.Model), "char, bigram or trigram")
	pron := fs.String("pron", def.Pronunciations, "pronunciation table")
	words := fs.String("words", def.Words, "vocabulary file")
	dict := fs.String("dict", def.Dict, "frequency file")
	workers := fs.Int("threads", def.Workers, "number of worker goroutines")
	debug := fs.Bool("debug", false, "log the best lattice states")
	fs.Parse(args)

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = translator.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	// Flags given explicitly win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = translator.Model(*model)
		case "pron":
			cfg.Pronunciations = *pron
		case "words":
			cfg.Words = *words
		case "dict":
			cfg.Dict = *dict
		case "threads":
			cfg.Workers = *workers
		case "debug":
			cfg.Debug = *debug
		}
	})
	if cfg.Model == translator.ModelChar && *configPath == "" {
		cfg.Lambda = options.Build(options.WithCharDefaults()).Lambda
	}
	cfg.CacheSize = 0

	start := time.Now()
	tr, err := translator.New(cfg, nil)
	if err != nil {
		return err
	}
	log.Printf("Load time: %s", time.Since(start))

	var lines []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	start = time.Now()
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, r := range tr.TranslateBatch(lines) {
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", r.Error)
			continue
		}
		fmt.Fprintln(out, r.Text)
	}
	log.Printf("Translate time: %s", time.Since(start))
	return nil
}

// makeDict counts a corpus and writes the model files.
func makeDict(args []string) error {
	fs := flag.NewFlagSet("make-dict", flag.ExitOnError)
	model := fs.String("model", "trigram", "char, bigram or trigram")
	pron := fs.String("pron", "data/pinyin.txt", "pronunciation table")
	base := fs.String("base", "extra/words_base.txt", "base vocabulary, always kept")
	punct := fs.String("punct", "extra/punctuations.txt", "punctuation tokens, one per line")
	keys := fs.String("keys", "", "comma separated JSON fields holding the text; empty reads plain lines")
	gbk := fs.Bool("gbk", false, "corpus is GBK encoded")
	minCount := fs.Uint64("min-count", train.DefaultMinCount, "occurrences a corpus word needs to be kept")
	annotate := fs.Bool("annotate", false, "annotate kept corpus words with pinyin")
	wordsOut := fs.String("words", "data/words.txt", "vocabulary output")
	dictOut := fs.String("dict", "data/dict.bin", "frequency output")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("no corpus files given")
	}
	opts := train.CorpusOptions{GBK: *gbk, Progress: true}
	if *keys != "" {
		opts.Keys = strings.Split(*keys, ",")
	}

	start := time.Now()
	sy, chars, err := tables.LoadPronunciationsFile(*pron)
	if err != nil {
		return err
	}

	if translator.Model(*model) == translator.ModelChar {
		c := train.NewCharCounter(chars)
		if err := eachCorpus(fs.Args(), opts, c.AddSentence); err != nil {
			return err
		}
		if err := ngram.SaveBigram(*dictOut, c.Store()); err != nil {
			return err
		}
		log.Printf("Build time: %s", time.Since(start))
		return nil
	}

	var trigrams bool
	switch translator.Model(*model) {
	case translator.ModelBigram:
	case translator.ModelTrigram:
		trigrams = true
	default:
		return fmt.Errorf("unknown model %q", *model)
	}

	wt, err := tables.LoadWordsFile(*base, sy)
	if err != nil {
		return err
	}
	p, err := train.ReadPunctuationsFile(*punct)
	if err != nil {
		return err
	}
	c := train.NewWordCounter(wt, chars, p, trigrams)
	err = eachCorpus(fs.Args(), opts, func(text string) {
		c.AddWords(strings.Fields(text))
	})
	if err != nil {
		return err
	}

	var ann *tables.Annotator
	if *annotate {
		ann = tables.NewAnnotator(sy)
	}
	words, s := c.Compact(*minCount, ann)
	if err := train.WriteDictionary(*wordsOut, *dictOut, sy, words, s); err != nil {
		return err
	}
	log.Printf("Build time: %s", time.Since(start))
	return nil
}

func eachCorpus(paths []string, opts train.CorpusOptions, f func(string)) error {
	for _, path := range paths {
		log.Printf("Reading %s", path)
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		err = train.ReadCorpus(file, opts, f)
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
