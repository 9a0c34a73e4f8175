package tree_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/filetree/internal/tree"
)

// failingOpenFs refuses to open one directory while still reporting it through Stat,
// mimicking a directory that lost its read permission between listing and visiting.
type failingOpenFs struct {
	afero.Fs
	failingPath string
}

func (fileSystem failingOpenFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == fileSystem.failingPath {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return fileSystem.Fs.Open(name)
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func writeFixture(t *testing.T, fileSystem afero.Fs, directories []string, files []string) {
	t.Helper()
	for _, directoryPath := range directories {
		if err := fileSystem.MkdirAll(directoryPath, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", directoryPath, err)
		}
	}
	for _, filePath := range files {
		if err := fileSystem.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(filePath), err)
		}
		if err := afero.WriteFile(fileSystem, filePath, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", filePath, err)
		}
	}
}

func emit(t *testing.T, fileSystem afero.Fs, directoryPath string, exclusions tree.NameSet, indent string) string {
	t.Helper()
	var sink bytes.Buffer
	if err := tree.NewWalker(fileSystem).EmitTree(directoryPath, &sink, exclusions, indent); err != nil {
		t.Fatalf("EmitTree(%s) error: %v", directoryPath, err)
	}
	return sink.String()
}

func TestEmitTreeSubdirectoriesPrecedeFiles(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem, nil, []string{"/d/sub/x.txt", "/d/y.txt"})

	expected := "d/\n" +
		"    sub/\n" +
		"        x.txt\n" +
		"    y.txt\n"
	if result := emit(t, fileSystem, "/d", nil, ""); result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
}

func TestEmitTreeOrdering(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem,
		[]string{"/level/c", "/level/a", "/level/Z"},
		[]string{"/level/b", "/level/B.txt", "/level/_notes"},
	)

	expected := "level/\n" +
		"    Z/\n" +
		"    a/\n" +
		"    c/\n" +
		"    B.txt\n" +
		"    _notes\n" +
		"    b\n"
	if result := emit(t, fileSystem, "/level", nil, ""); result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
}

func TestEmitTreeIndentPrefix(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem, nil, []string{"/root/app/index.tsx"})

	expected := "    app/\n" +
		"        index.tsx\n"
	if result := emit(t, fileSystem, "/root/app", nil, tree.DefaultUnitIndent); result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
}

func TestEmitTreeExclusionsApplyAtEveryDepth(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem,
		[]string{"/project/node_modules/react", "/project/src/.git"},
		[]string{
			"/project/node_modules/react/index.js",
			"/project/src/.git/HEAD",
			"/project/src/deep/node_modules/left-pad.js",
			"/project/src/deep/main.go",
			"/project/src/.DS_Store",
			"/project/.DS_Store",
		},
	)
	exclusions := tree.NewNameSet("node_modules", ".git", ".DS_Store")

	result := emit(t, fileSystem, "/project", exclusions, "")
	for excludedName := range exclusions {
		if strings.Contains(result, excludedName) {
			t.Fatalf("output contains excluded name %q:\n%s", excludedName, result)
		}
	}
	for _, enteredOnlyThroughExcluded := range []string{"react", "index.js", "HEAD", "left-pad.js"} {
		if strings.Contains(result, enteredOnlyThroughExcluded) {
			t.Fatalf("output contains %q from an excluded subtree:\n%s", enteredOnlyThroughExcluded, result)
		}
	}
	expected := "project/\n" +
		"    src/\n" +
		"        deep/\n" +
		"            main.go\n"
	if result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
}

func TestEmitTreeExclusionMatchesWholeNamesOnly(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem, nil, []string{"/p/build/out.js", "/p/build.log", "/p/prebuild/x"})

	expected := "p/\n" +
		"    prebuild/\n" +
		"        x\n" +
		"    build.log\n"
	if result := emit(t, fileSystem, "/p", tree.NewNameSet("build"), ""); result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
}

func TestEmitTreeContainsUnreadableDirectory(t *testing.T) {
	memoryFs := afero.NewMemMapFs()
	writeFixture(t, memoryFs, nil, []string{
		"/top/alpha/a.txt",
		"/top/locked/secret.txt",
		"/top/locked/inner/deeper.txt",
		"/top/omega/z.txt",
		"/top/readme.md",
	})
	fileSystem := failingOpenFs{Fs: memoryFs, failingPath: "/top/locked"}

	result := emit(t, fileSystem, "/top", nil, "")
	expected := "top/\n" +
		"    alpha/\n" +
		"        a.txt\n" +
		"    locked/\n" +
		"         [Error reading directory: open /top/locked: permission denied]\n" +
		"    omega/\n" +
		"        z.txt\n" +
		"    readme.md\n"
	if result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
	if count := strings.Count(result, "[Error reading directory"); count != 1 {
		t.Fatalf("expected exactly one error line, got %d", count)
	}
}

func TestEmitTreeOnMissingOrFilePath(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem, nil, []string{"/data/plain.txt"})

	testCases := []struct {
		name           string
		path           string
		expectedHeader string
	}{
		{name: "vanished directory", path: "/data/gone", expectedHeader: "gone/\n"},
		{name: "not a directory", path: "/data/plain.txt", expectedHeader: "plain.txt/\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := emit(t, fileSystem, testCase.path, nil, "")
			lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
			if len(lines) != 2 {
				t.Fatalf("expected header and one error line, got %q", result)
			}
			if lines[0]+"\n" != testCase.expectedHeader {
				t.Fatalf("expected header %q, got %q", testCase.expectedHeader, lines[0])
			}
			if !strings.HasPrefix(lines[1], tree.DefaultUnitIndent+" [Error reading directory: ") || !strings.HasSuffix(lines[1], "]") {
				t.Fatalf("unexpected error line %q", lines[1])
			}
		})
	}
}

func TestEmitTreeDropsEntriesThatAreNeitherFilesNorDirectories(t *testing.T) {
	rootDirectory := t.TempDir()
	if err := os.MkdirAll(filepath.Join(rootDirectory, "pkg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rootDirectory, "pkg", "kept.go"), []byte("package pkg"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Symlink(filepath.Join(rootDirectory, "missing-target"), filepath.Join(rootDirectory, "pkg", "dangling")); err != nil {
		t.Skipf("symbolic links unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(rootDirectory, "pkg", "kept.go"), filepath.Join(rootDirectory, "pkg", "alias.go")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	expected := "pkg/\n" +
		"    alias.go\n" +
		"    kept.go\n"
	if result := emit(t, afero.NewOsFs(), filepath.Join(rootDirectory, "pkg"), nil, ""); result != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", result, expected)
	}
}

func TestEmitTreeIsIdempotent(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem, []string{"/repo/empty"}, []string{"/repo/a/b/c.txt", "/repo/a/d.txt", "/repo/e.txt"})

	first := emit(t, fileSystem, "/repo", tree.NewNameSet("d.txt"), "")
	second := emit(t, fileSystem, "/repo", tree.NewNameSet("d.txt"), "")
	if first != second {
		t.Fatalf("outputs differ:\n%s\n---\n%s", first, second)
	}
}

func TestEmitTreeReturnsSinkErrors(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(t, fileSystem, nil, []string{"/w/file"})

	if err := tree.NewWalker(fileSystem).EmitTree("/w", failingWriter{}, nil, ""); err == nil {
		t.Fatalf("expected sink write error")
	}
}

func TestNameSet(t *testing.T) {
	set := tree.NewNameSet(".git", "node_modules")
	if !set.Contains(".git") || !set.Contains("node_modules") {
		t.Fatalf("expected members to be found in %v", set)
	}
	if set.Contains(".GIT") || set.Contains("node_modules/") {
		t.Fatalf("expected exact matching only")
	}
	var empty tree.NameSet
	if empty.Contains("") {
		t.Fatalf("nil set must contain nothing")
	}
}
