package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/filetree/internal/config"
)

const (
	copyFlagName                = config.KeyCopy
	copyFlagTypeName            = "copy"
	copyFlagDescription         = "copy the generated listing to the system clipboard"
	invalidCopyFlagValueMessage = "invalid copy flag value '%s'"
	endOfFlagsArgument          = "--"
)

var (
	trueCopyFlagLiterals = map[string]struct{}{
		"":     {},
		"true": {},
		"t":    {},
		"1":    {},
		"yes":  {},
		"y":    {},
	}
	falseCopyFlagLiterals = map[string]struct{}{
		"false": {},
		"f":     {},
		"0":     {},
		"no":    {},
		"n":     {},
	}
)

func interpretCopyFlagLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if _, matches := trueCopyFlagLiterals[normalized]; matches {
		return true, true
	}
	if _, matches := falseCopyFlagLiterals[normalized]; matches {
		return false, true
	}
	return false, false
}

// copyFlagValue is a boolean flag that also accepts yes/no literals as a separate argument.
type copyFlagValue struct {
	target *bool
}

func (value *copyFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	booleanValue, ok := interpretCopyFlagLiteral(input)
	if !ok {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	*value.target = booleanValue
	return nil
}

func (value *copyFlagValue) String() string {
	if value == nil || value.target == nil || !*value.target {
		return "false"
	}
	return "true"
}

func (value *copyFlagValue) Type() string {
	return copyFlagTypeName
}

func registerCopyFlag(flagSet *pflag.FlagSet, target *bool) {
	if flagSet == nil || target == nil {
		return
	}
	*target = false
	flagSet.Var(&copyFlagValue{target: target}, copyFlagName, copyFlagDescription)
	if lookup := flagSet.Lookup(copyFlagName); lookup != nil {
		lookup.NoOptDefVal = "true"
	}
}

// normalizeCopyFlagArguments rewrites "--copy <value>" into "--copy=<value>" so a detached
// yes/no literal is not mistaken for a positional argument.
func normalizeCopyFlagArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == endOfFlagsArgument {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if current != "--"+copyFlagName {
			normalized = append(normalized, current)
			continue
		}
		nextIndex := index + 1
		if nextIndex >= len(arguments) || strings.HasPrefix(arguments[nextIndex], "-") {
			normalized = append(normalized, fmt.Sprintf("--%s=true", copyFlagName))
			continue
		}
		if booleanValue, ok := interpretCopyFlagLiteral(arguments[nextIndex]); ok {
			normalized = append(normalized, fmt.Sprintf("--%s=%t", copyFlagName, booleanValue))
		} else {
			normalized = append(normalized, fmt.Sprintf("--%s=%s", copyFlagName, arguments[nextIndex]))
		}
		index = nextIndex
	}
	return normalized
}
