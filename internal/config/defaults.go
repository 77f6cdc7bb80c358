package config

// DefaultAddr is the default listen address for the HTTP/WebSocket server.
// Loopback only: the browser UI runs on the same machine.
const DefaultAddr = "127.0.0.1:4966"

// DefaultDebounceMs is the default filesystem-change debounce window.
const DefaultDebounceMs = 300

// DefaultGitMaxOutputMB is the default git subprocess output ceiling.
const DefaultGitMaxOutputMB = 64

// DefaultLogLevel is the default logging verbosity.
const DefaultLogLevel = "info"

// DefaultIgnoreGlobs are the filesystem-event globs dropped by default.
// These cover build artifacts and dependency trees that churn constantly
// and never matter for a diff review.
var DefaultIgnoreGlobs = []string{
	"node_modules/**",
	"**/node_modules/**",
	"dist/**",
	"build/**",
	"coverage/**",
	"**/*.swp",
	"**/*.tmp",
	"**/.DS_Store",
}
