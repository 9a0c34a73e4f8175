// Package tree renders directory hierarchies as indented text listings.
package tree

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

const (
	// DefaultUnitIndent is the prefix added for every nesting level.
	DefaultUnitIndent = "    "
	// DirectoryMarker suffixes every directory header line.
	DirectoryMarker = "/"

	// directoryHeaderFormat renders a directory header: indent, name, marker.
	directoryHeaderFormat = "%s%s%s\n"
	// fileLineFormat renders a file line: indent, name.
	fileLineFormat = "%s%s\n"
	// readErrorLineFormat renders the diagnostic written when a directory cannot be listed.
	readErrorLineFormat = "%s [Error reading directory: %v]\n"

	// errorWriteSinkFormat is used when the sink rejects a write.
	errorWriteSinkFormat = "writing tree output: %w"
	// errorCloseDirectoryFormat is used when a listed directory handle cannot be closed.
	errorCloseDirectoryFormat = "closing directory %s: %w"
)

// NameSet holds basenames matched by exact string equality.
type NameSet map[string]struct{}

// NewNameSet builds a NameSet from the provided names.
func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is a member of the set. A nil set contains nothing.
func (set NameSet) Contains(name string) bool {
	_, exists := set[name]
	return exists
}

// Walker emits the indented listing of a directory subtree.
type Walker struct {
	fileSystem afero.Fs
	unitIndent string
}

// NewWalker returns a Walker reading from fileSystem and indenting by DefaultUnitIndent.
func NewWalker(fileSystem afero.Fs) *Walker {
	return &Walker{fileSystem: fileSystem, unitIndent: DefaultUnitIndent}
}

// UnitIndent returns the prefix the walker adds per nesting level.
func (walker *Walker) UnitIndent() string {
	return walker.unitIndent
}

// EmitTree writes the header of directoryPath followed by its subdirectories, recursively,
// and then its regular files. Names in exclusions are skipped at every depth.
//
// A directory that cannot be listed is annotated with a single error line and not descended;
// the returned error is only ever a failure to write to sink.
func (walker *Walker) EmitTree(directoryPath string, sink io.Writer, exclusions NameSet, indent string) error {
	if _, writeError := fmt.Fprintf(sink, directoryHeaderFormat, indent, filepath.Base(directoryPath), DirectoryMarker); writeError != nil {
		return fmt.Errorf(errorWriteSinkFormat, writeError)
	}
	childIndent := indent + walker.unitIndent

	entryNames, listError := walker.listNames(directoryPath)
	if listError != nil {
		if _, writeError := fmt.Fprintf(sink, readErrorLineFormat, childIndent, listError); writeError != nil {
			return fmt.Errorf(errorWriteSinkFormat, writeError)
		}
		return nil
	}

	directoryPaths, fileNames := walker.partition(directoryPath, entryNames, exclusions)

	for _, subdirectoryPath := range directoryPaths {
		if emitError := walker.EmitTree(subdirectoryPath, sink, exclusions, childIndent); emitError != nil {
			return emitError
		}
	}

	for _, fileName := range fileNames {
		if _, writeError := fmt.Fprintf(sink, fileLineFormat, childIndent, fileName); writeError != nil {
			return fmt.Errorf(errorWriteSinkFormat, writeError)
		}
	}
	return nil
}

// listNames returns the immediate entry names of directoryPath in byte-wise ascending order.
func (walker *Walker) listNames(directoryPath string) ([]string, error) {
	directoryHandle, openError := walker.fileSystem.Open(directoryPath)
	if openError != nil {
		return nil, openError
	}
	entryNames, readError := directoryHandle.Readdirnames(-1)
	closeError := directoryHandle.Close()
	if readError != nil {
		return nil, readError
	}
	if closeError != nil {
		return nil, fmt.Errorf(errorCloseDirectoryFormat, directoryPath, closeError)
	}
	sort.Strings(entryNames)
	return entryNames, nil
}

// partition splits sorted entry names into subdirectory paths and regular file names.
// Excluded names and entries that are neither, including vanished entries and dangling
// symbolic links, are dropped. Classification follows symbolic links.
func (walker *Walker) partition(directoryPath string, entryNames []string, exclusions NameSet) ([]string, []string) {
	var directoryPaths []string
	var fileNames []string
	for _, entryName := range entryNames {
		if exclusions.Contains(entryName) {
			continue
		}
		entryPath := filepath.Join(directoryPath, entryName)
		entryInfo, statError := walker.fileSystem.Stat(entryPath)
		if statError != nil {
			continue
		}
		switch {
		case entryInfo.IsDir():
			directoryPaths = append(directoryPaths, entryPath)
		case entryInfo.Mode().IsRegular():
			fileNames = append(fileNames, entryName)
		}
	}
	return directoryPaths, fileNames
}
