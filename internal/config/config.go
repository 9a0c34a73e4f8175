// Package config resolves filetree settings from defaults, environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/temirov/filetree/internal/utils"
)

// Configuration keys shared by viper, flags and environment variables.
const (
	KeyContentRoot = "root"
	KeyOutputPath  = "output"
	KeyInclude     = "include"
	KeyExclude     = "exclude"
	KeyIncludeAll  = "all"
	KeyTokens      = "tokens"
	KeyModel       = "model"
	KeyCopy        = "copy"
	KeyVerbose     = "verbose"

	// EnvironmentPrefix prefixes every environment variable, e.g. FILETREE_ROOT.
	EnvironmentPrefix = "FILETREE"
)

// Defaults reproduce the layout of the project the tool was first written for.
const (
	DefaultContentRoot    = "QuRe"
	DefaultOutputPath     = "FILE_TREE.txt"
	DefaultTokenizerModel = "gpt-4o"
)

var (
	// DefaultInclude lists the top-level directories walked by default.
	DefaultInclude = []string{"app", "assets", "components", "hooks", "scripts"}
	// DefaultExclude lists the basenames skipped at every depth by default.
	DefaultExclude = []string{".expo", "node_modules", ".git", "__pycache__", ".DS_Store"}

	// ErrEmptyContentRoot reports a blank content root.
	ErrEmptyContentRoot = errors.New("content root must not be empty")
	// ErrEmptyOutputPath reports a blank output path.
	ErrEmptyOutputPath = errors.New("output path must not be empty")
)

const (
	errorBindFlagsFormat = "bind flags: %w"
	errorDecodeFormat    = "decode configuration: %w"
)

// Configuration holds the settings of one run.
type Configuration struct {
	ContentRoot string   `mapstructure:"root"`
	OutputPath  string   `mapstructure:"output"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	IncludeAll  bool     `mapstructure:"all"`
	Tokens      bool     `mapstructure:"tokens"`
	Model       string   `mapstructure:"model"`
	Copy        bool     `mapstructure:"copy"`
	Verbose     bool     `mapstructure:"verbose"`
}

// LoadOptions controls where configuration values are read from.
type LoadOptions struct {
	// Flags are consulted first when changed. Unchanged flags fall back to the environment.
	Flags *pflag.FlagSet
}

// LoadConfiguration resolves the configuration with precedence flag, environment, default.
func LoadConfiguration(options LoadOptions) (Configuration, error) {
	reader := viper.New()
	reader.SetDefault(KeyContentRoot, DefaultContentRoot)
	reader.SetDefault(KeyOutputPath, DefaultOutputPath)
	reader.SetDefault(KeyInclude, DefaultInclude)
	reader.SetDefault(KeyExclude, DefaultExclude)
	reader.SetDefault(KeyIncludeAll, false)
	reader.SetDefault(KeyTokens, false)
	reader.SetDefault(KeyModel, DefaultTokenizerModel)
	reader.SetDefault(KeyCopy, false)
	reader.SetDefault(KeyVerbose, false)

	reader.SetEnvPrefix(EnvironmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	reader.AutomaticEnv()

	if options.Flags != nil {
		if bindError := reader.BindPFlags(options.Flags); bindError != nil {
			return Configuration{}, fmt.Errorf(errorBindFlagsFormat, bindError)
		}
	}

	var configuration Configuration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return Configuration{}, fmt.Errorf(errorDecodeFormat, decodeError)
	}
	return configuration.normalize()
}

// normalize trims values, splits comma lists and rejects blank paths.
func (configuration Configuration) normalize() (Configuration, error) {
	result := configuration
	result.ContentRoot = strings.TrimSpace(result.ContentRoot)
	result.OutputPath = strings.TrimSpace(result.OutputPath)
	result.Model = strings.TrimSpace(result.Model)
	result.Include = utils.NormalizeNames(result.Include)
	result.Exclude = utils.NormalizeNames(result.Exclude)
	if result.ContentRoot == "" {
		return Configuration{}, ErrEmptyContentRoot
	}
	if result.OutputPath == "" {
		return Configuration{}, ErrEmptyOutputPath
	}
	if result.Model == "" {
		result.Model = DefaultTokenizerModel
	}
	return result, nil
}
