package gvcf

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of the environment variables that override
// Options, for example ELGVCF_MIN_GQX.
const EnvPrefix = "ELGVCF"

// Options configures the filters and the block compression of an
// Aggregator.
type Options struct {
	IsMinGQX bool `yaml:"is-min-gqx" envconfig:"IS_MIN_GQX"`
	MinGQX   int  `yaml:"min-gqx" envconfig:"MIN_GQX"`

	IsMaxDepth bool `yaml:"is-max-depth" envconfig:"IS_MAX_DEPTH"`
	MaxDepth   int  `yaml:"max-depth" envconfig:"MAX_DEPTH"`

	// Sites are only block compressed when the fraction of non-reference
	// calls stays below BlockMaxNonref.
	BlockMaxNonref float64 `yaml:"block-max-nonref" envconfig:"BLOCK_MAX_NONREF"`

	// BlockLabel is added to the INFO column of block records.
	BlockLabel string `yaml:"block-label" envconfig:"BLOCK_LABEL"`
}

// DefaultOptions returns the default settings.
func DefaultOptions() Options {
	return Options{
		IsMinGQX:       true,
		MinGQX:         30,
		IsMaxDepth:     false,
		MaxDepth:       0,
		BlockMaxNonref: 0.2,
		BlockLabel:     "BLOCKAVG_min30p3a",
	}
}

// LoadOptions returns the default options, overridden by the given
// YAML file (if filename is not empty), overridden by ELGVCF_
// environment variables.
func LoadOptions(filename string) (opt Options, err error) {
	opt = DefaultOptions()
	if filename != "" {
		if err = opt.readYAML(filename); err != nil {
			return opt, err
		}
	}
	if err = envconfig.Process(EnvPrefix, &opt); err != nil {
		return opt, fmt.Errorf("invalid %v environment setting: %w", EnvPrefix, err)
	}
	return opt, opt.Validate()
}

func (opt *Options) readYAML(filename string) (err error) {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()
	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)
	if err = decoder.Decode(opt); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid options file %v: %w", filename, err)
	}
	return nil
}

// Validate checks that all thresholds are in range.
func (opt *Options) Validate() error {
	if opt.MinGQX < 0 {
		return fmt.Errorf("invalid minimum GQX %v", opt.MinGQX)
	}
	if opt.MaxDepth < 0 {
		return fmt.Errorf("invalid maximum depth %v", opt.MaxDepth)
	}
	if opt.BlockMaxNonref < 0 || opt.BlockMaxNonref > 1 {
		return fmt.Errorf("invalid block non-reference tolerance %v, must be between 0 and 1", opt.BlockMaxNonref)
	}
	if opt.BlockLabel == "" {
		return errors.New("missing block label")
	}
	return nil
}
