package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Logger provides leveled logging (debug/info/warning/error) to stdout/stderr
// and, when a log directory is set, to one file per level.
type Logger struct {
	debugLog   *log.Logger
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	verbose    bool
	files      []*os.File
	mu         sync.Mutex
}

// New creates a Logger. An empty logDir logs to the console only.
func New(logDir string, verbose bool) (*Logger, error) {
	l := &Logger{logDir: logDir, verbose: verbose}

	if logDir == "" {
		l.setupLoggers(os.Stdout, os.Stdout, os.Stderr)
		return l, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	info, err := l.openLogFile("info.log")
	if err != nil {
		return nil, err
	}
	warning, err := l.openLogFile("warning.log")
	if err != nil {
		l.Close()
		return nil, err
	}
	errorFile, err := l.openLogFile("error.log")
	if err != nil {
		l.Close()
		return nil, err
	}

	l.setupLoggers(
		io.MultiWriter(os.Stdout, info),
		io.MultiWriter(os.Stdout, warning),
		io.MultiWriter(os.Stderr, errorFile),
	)
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	l := &Logger{}
	l.setupLoggers(io.Discard, io.Discard, io.Discard)
	return l
}

// setupLoggers initializes the per-level loggers. Debug shares the info writer.
func (l *Logger) setupLoggers(info, warning, errOut io.Writer) {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	l.debugLog = log.New(info, "DEBUG   ", flags)
	l.infoLog = log.New(info, "INFO    ", flags)
	l.warningLog = log.New(warning, "WARNING ", flags)
	l.errorLog = log.New(errOut, "ERROR   ", flags)
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(name string) (*os.File, error) {
	file, err := os.OpenFile(filepath.Join(l.logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
	}
	l.files = append(l.files, file)
	return file, nil
}

// Dir returns the log directory, empty for console-only loggers.
func (l *Logger) Dir() string {
	return l.logDir
}

// Debug writes a formatted debug-level entry when verbose logging is on.
func (l *Logger) Debug(format string, v ...interface{}) {
	if !l.verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugLog.Output(2, fmt.Sprintf(format, v...))
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(filepath.Join(l.logDir, fileName), os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to truncate %s: %w", fileName, err)
	}
	return file.Close()
}

// Close closes the log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
