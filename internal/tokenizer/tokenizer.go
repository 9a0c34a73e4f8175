// Package tokenizer estimates how many model tokens a generated listing occupies.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	errorFallbackEncodingFormat = "initialize fallback tokenizer: %w"
)

// NewCounter returns a Counter for model and the name of the encoding actually used.
// Models unknown to tiktoken are counted with the cl100k_base encoding.
func NewCounter(model string) (Counter, string, error) {
	normalizedModel := strings.ToLower(strings.TrimSpace(model))
	if normalizedModel == "" {
		normalizedModel = defaultModel
	}

	encoding, encodingError := tiktoken.EncodingForModel(normalizedModel)
	if encodingError == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: normalizedModel}, normalizedModel, nil
	}
	fallback, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf(errorFallbackEncodingFormat, fallbackError)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}
