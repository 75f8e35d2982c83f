package translator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pinyin/pkg/options"
)

// Model names the decoder a Translator serves.
type Model string

const (
	ModelChar    Model = "char"
	ModelBigram  Model = "bigram"
	ModelTrigram Model = "trigram"
)

type Config struct {
	Model          Model  `yaml:"model"`
	Pronunciations string `yaml:"pronunciations"`
	// Words is the vocabulary file; unused by the char model.
	Words string `yaml:"words"`
	Dict  string `yaml:"dict"`

	Smoothing       string  `yaml:"smoothing"`
	Lambda          float64 `yaml:"lambda"`
	Alpha           float64 `yaml:"alpha"`
	Beta            float64 `yaml:"beta"`
	FilterThreshold float64 `yaml:"filter_threshold"`
	Pruning         bool    `yaml:"pruning"`
	UseSOS          bool    `yaml:"use_sos"`
	UseEOS          bool    `yaml:"use_eos"`
	Debug           bool    `yaml:"debug"`

	CacheSize int           `yaml:"cache_size"`
	Workers   int           `yaml:"workers"`
	Suggest   SuggestConfig `yaml:"suggest"`
	Redis     RedisConfig   `yaml:"redis"`
}

// SuggestConfig weighs the edit distance used to suggest syllables for
// unknown tokens.
type SuggestConfig struct {
	MaxEditDistance int     `yaml:"max_edit_distance"`
	TopK            int     `yaml:"top_k"`
	TransposeCost   float64 `yaml:"transpose_cost"`
	NeighborInsDel  float64 `yaml:"neighbor_ins_del"`
	KeyboardNearSub float64 `yaml:"keyboard_near_sub"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func DefaultConfig() Config {
	d := options.DefaultOptions
	return Config{
		Model:           ModelTrigram,
		Pronunciations:  "data/pinyin.txt",
		Words:           "data/words.txt",
		Dict:            "data/dict.bin",
		Smoothing:       d.Smoothing.String(),
		Lambda:          d.Lambda,
		Alpha:           d.Alpha,
		Beta:            0.15,
		FilterThreshold: d.FilterThreshold,
		Pruning:         d.Pruning,
		UseSOS:          d.UseSOS,
		UseEOS:          d.UseEOS,
		CacheSize:       4096,
		Workers:         4,
		Suggest: SuggestConfig{
			MaxEditDistance: 2,
			TopK:            5,
			TransposeCost:   0.6,
			NeighborInsDel:  0.9,
			KeyboardNearSub: 0.6,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Model {
	case ModelChar, ModelBigram, ModelTrigram:
	default:
		return fmt.Errorf("unknown model %q", c.Model)
	}
	sm, err := options.ParseSmoothing(c.Smoothing)
	if err != nil {
		return err
	}
	if sm == options.Discounted && c.Model != ModelBigram {
		return fmt.Errorf("smoothing %q is only supported by the bigram model", c.Smoothing)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// Options converts the decoder parameters to functional options.
func (c Config) Options() ([]options.Options, error) {
	sm, err := options.ParseSmoothing(c.Smoothing)
	if err != nil {
		return nil, err
	}
	opts := []options.Options{
		options.WithLambda(c.Lambda),
		options.WithAlpha(c.Alpha),
		options.WithBeta(c.Beta),
		options.WithFilterThreshold(c.FilterThreshold),
		options.WithSmoothing(sm),
	}
	if !c.Pruning {
		opts = append(opts, options.WithoutPruning())
	}
	if !c.UseSOS {
		opts = append(opts, options.WithoutSOS())
	}
	if !c.UseEOS {
		opts = append(opts, options.WithoutEOS())
	}
	if c.Debug {
		opts = append(opts, options.WithDebug())
	}
	return opts, nil
}
