package options

import (
	"fmt"
	"strings"
)

// Smoothing selects how the word bigram decoder estimates transitions.
type Smoothing int

const (
	// Interpolated mixes the bigram and unigram estimates with Lambda.
	Interpolated Smoothing = iota
	// Discounted uses absolute discounting with a continuation backoff.
	Discounted
)

func (s Smoothing) String() string {
	switch s {
	case Interpolated:
		return "interpolated"
	case Discounted:
		return "discounted"
	}
	return fmt.Sprintf("Smoothing(%d)", int(s))
}

// ParseSmoothing accepts the names printed by Smoothing.String.
func ParseSmoothing(s string) (Smoothing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "interpolated":
		return Interpolated, nil
	case "discounted", "kn":
		return Discounted, nil
	}
	return 0, fmt.Errorf("unknown smoothing %q", s)
}

var DefaultOptions = DecoderOptions{
	Lambda:          0.999998,
	Alpha:           0.999998,
	Beta:            0.9,
	FilterThreshold: 1e-3,
	Pruning:         true,
	UseSOS:          true,
	UseEOS:          true,
	Smoothing:       Interpolated,
}

type DecoderOptions struct {
	Lambda          float64 // bigram weight of the bigram decoders
	Alpha           float64 // bigram weight inside the trigram decoder's lower order mix
	Beta            float64 // trigram weight
	FilterThreshold float64 // states below layer max times this are pruned
	Pruning         bool
	UseSOS          bool // count transitions out of <s>
	UseEOS          bool // score the transition into </s>; when false it is 1
	Smoothing       Smoothing
	Debug           bool // log the best states after every syllable
}

type Options interface {
	Apply(options *DecoderOptions)
}

type FuncConfig struct {
	ops func(options *DecoderOptions)
}

func (w FuncConfig) Apply(conf *DecoderOptions) {
	w.ops(conf)
}

func NewFuncOption(f func(options *DecoderOptions)) *FuncConfig {
	return &FuncConfig{ops: f}
}

// Build applies opts on top of DefaultOptions.
func Build(opts ...Options) DecoderOptions {
	o := DefaultOptions
	for _, opt := range opts {
		opt.Apply(&o)
	}
	return o
}

func WithLambda(lambda float64) Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Lambda = lambda
	})
}

func WithAlpha(alpha float64) Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Alpha = alpha
	})
}

func WithBeta(beta float64) Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Beta = beta
	})
}

func WithFilterThreshold(threshold float64) Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.FilterThreshold = threshold
	})
}

func WithoutPruning() Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Pruning = false
	})
}

func WithoutSOS() Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.UseSOS = false
	})
}

func WithoutEOS() Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.UseEOS = false
	})
}

func WithSmoothing(s Smoothing) Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Smoothing = s
	})
}

// WithDiscounting switches the word bigram decoder to discounted smoothing.
func WithDiscounting() Options {
	return WithSmoothing(Discounted)
}

func WithDebug() Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Debug = true
	})
}

// WithCharDefaults sets the bigram weight used for character decoding.
func WithCharDefaults() Options {
	return NewFuncOption(func(options *DecoderOptions) {
		options.Lambda = 0.95
	})
}
