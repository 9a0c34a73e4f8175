// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/filetree/internal/config"
	"github.com/temirov/filetree/internal/services/clipboard"
	"github.com/temirov/filetree/internal/tokenizer"
	"github.com/temirov/filetree/internal/tree"
	"github.com/temirov/filetree/internal/utils"
)

const (
	rootUse              = "filetree"
	rootShortDescription = "write an indented directory tree to a text file"
	rootLongDescription  = `filetree lists the directories and files under a content root and saves the
listing to a text file. Only the top-level directories named by --include are walked
(use --all to walk every one); names given to --exclude are skipped at every depth.
Subdirectories are listed before files, both in lexicographic order.

Every flag can also be set through an environment variable prefixed with FILETREE_,
for example FILETREE_ROOT or FILETREE_EXCLUDE.`
	rootUsageExample = `  # Render the default layout into FILE_TREE.txt
  filetree

  # Walk every top-level directory of ./site and skip dist folders
  filetree --root site --all -e dist -o site-tree.txt

  # Count tokens of the listing and copy it to the clipboard
  filetree --tokens --copy`

	contentRootShorthand = "r"
	outputShorthand      = "o"
	includeShorthand     = "i"
	excludeShorthand     = "e"

	contentRootFlagDescription = "directory whose contents are rendered"
	outputFlagDescription      = "file the listing is written to"
	includeFlagDescription     = "top-level directory to walk (repeatable, comma separated)"
	excludeFlagDescription     = "basename skipped at every depth (repeatable, comma separated)"
	includeAllFlagDescription  = "walk every top-level directory instead of the include list"
	tokensFlagDescription      = "log a token estimate of the generated listing"
	modelFlagDescription       = "tokenizer model used for the token estimate"
	verboseFlagDescription     = "log skipped entries and run details"

	confirmationMessageFormat = "File tree generated and saved to %s\n"
	warningTokenCountMessage  = "Warning: failed to count tokens"
	warningClipboardMessage   = "Warning: failed to copy listing to clipboard"
	warningReadOutputMessage  = "Warning: failed to read generated listing"
	tokenEstimateMessage      = "token estimate"
	clipboardCopiedMessage    = "listing copied to clipboard"
)

// CounterFactory builds a token counter for a model name.
type CounterFactory func(model string) (tokenizer.Counter, string, error)

// Dependencies supplies the collaborators used by the command. Zero values are replaced by
// the operating system filesystem, a no-op logger, the system clipboard and tiktoken.
type Dependencies struct {
	FileSystem afero.Fs
	Logger     *zap.Logger
	LogLevel   *zap.AtomicLevel
	Copier     clipboard.Copier
	NewCounter CounterFactory
}

func (dependencies Dependencies) withDefaults() Dependencies {
	result := dependencies
	if result.FileSystem == nil {
		result.FileSystem = afero.NewOsFs()
	}
	if result.Logger == nil {
		result.Logger = zap.NewNop()
	}
	if result.Copier == nil {
		result.Copier = clipboard.NewService()
	}
	if result.NewCounter == nil {
		result.NewCounter = tokenizer.NewCounter
	}
	return result
}

// Execute runs the filetree application.
func Execute(ctx context.Context, dependencies Dependencies) error {
	rootCommand := NewRootCommand(dependencies)
	rootCommand.SetArgs(normalizeCopyFlagArguments(os.Args[1:]))
	return fang.Execute(
		ctx,
		rootCommand,
		fang.WithVersion(utils.GetApplicationVersion()),
		fang.WithoutManpage(),
	)
}

// NewRootCommand builds the filetree command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	resolvedDependencies := dependencies.withDefaults()
	var copyEnabled bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runGenerate(command, resolvedDependencies)
		},
	}

	flags := rootCommand.Flags()
	flags.StringP(config.KeyContentRoot, contentRootShorthand, config.DefaultContentRoot, contentRootFlagDescription)
	flags.StringP(config.KeyOutputPath, outputShorthand, config.DefaultOutputPath, outputFlagDescription)
	flags.StringSliceP(config.KeyInclude, includeShorthand, config.DefaultInclude, includeFlagDescription)
	flags.StringSliceP(config.KeyExclude, excludeShorthand, config.DefaultExclude, excludeFlagDescription)
	flags.Bool(config.KeyIncludeAll, false, includeAllFlagDescription)
	flags.Bool(config.KeyTokens, false, tokensFlagDescription)
	flags.String(config.KeyModel, config.DefaultTokenizerModel, modelFlagDescription)
	flags.Bool(config.KeyVerbose, false, verboseFlagDescription)
	registerCopyFlag(flags, &copyEnabled)
	return rootCommand
}

// runGenerate resolves the configuration, writes the listing and runs the optional follow-ups.
func runGenerate(command *cobra.Command, dependencies Dependencies) error {
	configuration, configurationError := config.LoadConfiguration(config.LoadOptions{Flags: command.Flags()})
	if configurationError != nil {
		return configurationError
	}
	if configuration.Verbose && dependencies.LogLevel != nil {
		dependencies.LogLevel.SetLevel(zap.DebugLevel)
	}
	logger := dependencies.Logger

	generator := tree.NewGenerator(dependencies.FileSystem, logger)
	result, generateError := generator.Generate(command.Context(), tree.Request{
		ContentRoot: configuration.ContentRoot,
		OutputPath:  configuration.OutputPath,
		Include:     configuration.Include,
		IncludeAll:  configuration.IncludeAll,
		Exclude:     configuration.Exclude,
	})
	if generateError != nil {
		return generateError
	}
	fmt.Fprintf(command.OutOrStdout(), confirmationMessageFormat, result.OutputPath)

	if configuration.Tokens {
		reportTokenEstimate(dependencies, logger, configuration.Model, result.OutputPath)
	}
	if configuration.Copy {
		copyListing(dependencies, logger, result.OutputPath)
	}
	return nil
}

// reportTokenEstimate logs the token count of the listing. Failures are warnings only.
func reportTokenEstimate(dependencies Dependencies, logger *zap.Logger, model string, outputPath string) {
	counter, resolvedModel, counterError := dependencies.NewCounter(model)
	if counterError != nil {
		logger.Warn(warningTokenCountMessage, zap.String("model", model), zap.Error(counterError))
		return
	}
	countResult, countError := tokenizer.CountFile(counter, dependencies.FileSystem, outputPath)
	if countError != nil {
		logger.Warn(warningTokenCountMessage, zap.String("output", outputPath), zap.Error(countError))
		return
	}
	if !countResult.Counted {
		return
	}
	logger.Info(tokenEstimateMessage,
		zap.String("output", outputPath),
		zap.String("model", resolvedModel),
		zap.Int("tokens", countResult.Tokens),
	)
}

// copyListing places the listing on the clipboard. Failures are warnings only.
func copyListing(dependencies Dependencies, logger *zap.Logger, outputPath string) {
	listing, readError := afero.ReadFile(dependencies.FileSystem, outputPath)
	if readError != nil {
		logger.Warn(warningReadOutputMessage, zap.String("output", outputPath), zap.Error(readError))
		return
	}
	if copyError := dependencies.Copier.Copy(string(listing)); copyError != nil {
		logger.Warn(warningClipboardMessage, zap.Error(copyError))
		return
	}
	logger.Debug(clipboardCopiedMessage, zap.Int("bytes", len(listing)))
}
