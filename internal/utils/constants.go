package utils

// Messages shared between the entry point and the command line layer.
const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal execution errors.
	ApplicationExecutionFailedMessage = "filetree execution failed"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// NameListSeparator separates names supplied as a single list value.
	NameListSeparator = ","
)
