package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrContentRootNotFound reports a content root that is missing or is not a directory.
var ErrContentRootNotFound = errors.New("content root directory not found")

const (
	outputFilePermissions = 0o644
	outputFileFlags       = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

	errorContentRootFormat   = "%w: %s"
	errorAbsolutePathFormat  = "getting absolute path for %s: %w"
	errorListRootFormat      = "reading content root %s: %w"
	errorOpenOutputFormat    = "opening output file %s: %w"
	errorCloseOutputFormat   = "closing output file %s: %w"
	errorEmitDirectoryFormat = "emitting %s: %w"
)

// Request describes one tree generation run.
type Request struct {
	// ContentRoot is the directory whose contents are rendered.
	ContentRoot string
	// OutputPath is the file the listing is written to. Render ignores it.
	OutputPath string
	// Include names the top-level directories of ContentRoot that are walked.
	Include []string
	// IncludeAll walks every top-level directory and ignores Include.
	IncludeAll bool
	// Exclude names basenames skipped at every depth.
	Exclude []string
}

// Result summarizes a completed run.
type Result struct {
	OutputPath        string
	RootName          string
	DirectoriesWalked int
	RootFiles         int
	BytesWritten      int64
}

// Generator owns the output sink for a run and drives a Walker once per included
// top-level directory.
type Generator struct {
	fileSystem afero.Fs
	walker     *Walker
	logger     *zap.Logger
}

// NewGenerator constructs a Generator. A nil logger discards log output.
func NewGenerator(fileSystem afero.Fs, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		fileSystem: fileSystem,
		walker:     NewWalker(fileSystem),
		logger:     logger,
	}
}

// Generate validates the content root, writes the listing to request.OutputPath and closes it.
// A missing content root yields ErrContentRootNotFound and no output file is created.
func (generator *Generator) Generate(ctx context.Context, request Request) (result Result, err error) {
	if _, validationError := generator.validateContentRoot(request.ContentRoot); validationError != nil {
		return Result{}, validationError
	}

	outputFile, openError := generator.fileSystem.OpenFile(request.OutputPath, outputFileFlags, outputFilePermissions)
	if openError != nil {
		return Result{}, fmt.Errorf(errorOpenOutputFormat, request.OutputPath, openError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && err == nil {
			err = fmt.Errorf(errorCloseOutputFormat, request.OutputPath, closeError)
		}
	}()

	result, err = generator.Render(ctx, request, outputFile)
	if err != nil {
		return Result{}, err
	}
	result.OutputPath = request.OutputPath
	generator.logger.Debug("file tree written",
		zap.String("output", request.OutputPath),
		zap.Int("directories", result.DirectoriesWalked),
		zap.Int("rootFiles", result.RootFiles),
		zap.Int64("bytes", result.BytesWritten),
	)
	return result, nil
}

// Render writes the listing for request to sink without opening or closing anything.
// The root header uses the basename of the absolute content root; included directories are
// emitted in sorted order, followed by the regular files sitting directly in the root.
func (generator *Generator) Render(ctx context.Context, request Request, sink io.Writer) (Result, error) {
	rootName, validationError := generator.validateContentRoot(request.ContentRoot)
	if validationError != nil {
		return Result{}, validationError
	}
	rootEntryNames, listError := generator.walker.listNames(request.ContentRoot)
	if listError != nil {
		return Result{}, fmt.Errorf(errorListRootFormat, request.ContentRoot, listError)
	}

	countedSink := &countingWriter{writer: sink}
	result := Result{RootName: rootName}
	exclusions := NewNameSet(request.Exclude...)
	inclusions := NewNameSet(request.Include...)
	baseIndent := generator.walker.UnitIndent()

	if _, writeError := fmt.Fprintf(countedSink, directoryHeaderFormat, "", rootName, DirectoryMarker); writeError != nil {
		return Result{}, fmt.Errorf(errorWriteSinkFormat, writeError)
	}

	var rootFileNames []string
	for _, entryName := range rootEntryNames {
		entryPath := filepath.Join(request.ContentRoot, entryName)
		entryInfo, statError := generator.fileSystem.Stat(entryPath)
		if statError != nil {
			generator.logger.Debug("skipping unreadable root entry", zap.String("path", entryPath), zap.Error(statError))
			continue
		}
		if exclusions.Contains(entryName) {
			generator.logger.Debug("skipping excluded root entry", zap.String("path", entryPath))
			continue
		}
		switch {
		case entryInfo.IsDir():
			if !request.IncludeAll && !inclusions.Contains(entryName) {
				generator.logger.Debug("skipping directory outside include list", zap.String("path", entryPath))
				continue
			}
			if contextError := ctx.Err(); contextError != nil {
				return Result{}, contextError
			}
			if emitError := generator.walker.EmitTree(entryPath, countedSink, exclusions, baseIndent); emitError != nil {
				return Result{}, fmt.Errorf(errorEmitDirectoryFormat, entryPath, emitError)
			}
			result.DirectoriesWalked++
		case entryInfo.Mode().IsRegular():
			rootFileNames = append(rootFileNames, entryName)
		}
	}

	for _, fileName := range rootFileNames {
		if _, writeError := fmt.Fprintf(countedSink, fileLineFormat, baseIndent, fileName); writeError != nil {
			return Result{}, fmt.Errorf(errorWriteSinkFormat, writeError)
		}
	}
	result.RootFiles = len(rootFileNames)
	result.BytesWritten = countedSink.written
	return result, nil
}

// validateContentRoot confirms contentRoot is an existing directory and returns its display name.
func (generator *Generator) validateContentRoot(contentRoot string) (string, error) {
	isDirectory, statError := afero.IsDir(generator.fileSystem, contentRoot)
	if statError != nil || !isDirectory {
		return "", fmt.Errorf(errorContentRootFormat, ErrContentRootNotFound, contentRoot)
	}
	absoluteRoot, absoluteError := filepath.Abs(contentRoot)
	if absoluteError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, contentRoot, absoluteError)
	}
	return filepath.Base(absoluteRoot), nil
}

// countingWriter tracks the number of bytes accepted by the wrapped writer.
type countingWriter struct {
	writer  io.Writer
	written int64
}

func (counter *countingWriter) Write(data []byte) (int, error) {
	bytesWritten, writeError := counter.writer.Write(data)
	counter.written += int64(bytesWritten)
	return bytesWritten, writeError
}
