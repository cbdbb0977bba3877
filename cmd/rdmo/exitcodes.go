package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no repository, invalid config or paths)
	ExitDataError   = 3 // Data error (malformed record files, unwritable output)
	ExitSourceError = 4 // Record source unreachable or returned an error
)
