// Package logger provides the logging abstraction used by jtrust's
// validators and command-line tooling. It defines the Logger interface
// and two implementations: CLILogger for human-readable output and
// ToolLogger for structured, line-delimited JSON output suited to
// callers embedding a TrustValidator in a larger service. Both
// implementations are safe for concurrent use.
package logger
