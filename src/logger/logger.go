package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger defines the interface for logging operations used throughout
// jtrust. It provides plain and formatted output at a single level.
// Its implementations also satisfy trust.Logger, so a *CLILogger or
// *ToolLogger can be passed directly to TrustValidator.SetLogger.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package. It's
// designed for the jtrust-verify command's human-readable output.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// ToolLogger implements Logger for callers embedding TrustValidator in
// a service and wanting structured, line-delimited JSON log records
// instead of CLILogger's plain text. It is silent when constructed
// with silent=true.
//
// ToolLogger is safe for concurrent use by multiple goroutines.
type ToolLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
}

// NewToolLogger creates a new structured logger writing to writer (a
// nil writer discards output). silent=true suppresses all output.
func NewToolLogger(writer io.Writer, silent bool) *ToolLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &ToolLogger{
		writer: writer,
		silent: silent,
	}
}

// Printf formats and logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (m *ToolLogger) Printf(format string, v ...any) {
	if m.silent {
		return
	}

	msg := fmt.Sprintf(format, v...)
	logEntry := map[string]any{
		"level":   "info",
		"message": msg,
	}

	data, _ := json.Marshal(logEntry)

	m.mu.Lock()
	fmt.Fprintln(m.writer, string(data))
	m.mu.Unlock()
}

// Println logs a structured message in JSON format. Output is
// suppressed if silent mode is enabled.
func (m *ToolLogger) Println(v ...any) {
	if m.silent {
		return
	}

	msg := fmt.Sprint(v...)
	logEntry := map[string]any{
		"level":   "info",
		"message": msg,
	}

	data, _ := json.Marshal(logEntry)

	m.mu.Lock()
	fmt.Fprintln(m.writer, string(data))
	m.mu.Unlock()
}

// SetOutput sets the output destination for the tool logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (m *ToolLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}
