package tokenizer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// ErrNilCounter reports a count requested without a counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a file.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountFile reads path from fileSystem and estimates its token count.
// Content that is not valid UTF-8 is reported as not counted.
func CountFile(counter Counter, fileSystem afero.Fs, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	data, readError := afero.ReadFile(fileSystem, path)
	if readError != nil {
		return CountResult{}, fmt.Errorf("reading %s: %w", path, readError)
	}
	if !utf8.Valid(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, countError := counter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
