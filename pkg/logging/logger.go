// Package logging writes per-session debug log files under ~/.scout/logs.
// The TUI draws on stdout and the MCP server frames JSON-RPC over stdio,
// so component debug output goes to a shared file keyed by session ID
// instead of the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// keepRecentLogs bounds how many finished session logs survive the
	// startup prune.
	keepRecentLogs = 20

	logSuffix       = "-scout.log"
	timestampLayout = "2006-01-02 15:04:05.000"
)

// Session state shared by every Logger in the process. bootstrap sets all
// of it exactly once; nothing mutates these afterwards.
var (
	bootstrapOnce sync.Once
	bootstrapErr  error
	sessionID     string
	logDir        string
)

// bootstrap generates the session ID and prepares the log directory,
// pruning stale logs from earlier sessions. The ID is assigned before
// anything that can fail so fallback loggers still carry it.
func bootstrap() error {
	bootstrapOnce.Do(func() {
		sessionID = uuid.New().String()

		home, err := os.UserHomeDir()
		if err != nil {
			bootstrapErr = fmt.Errorf("resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".scout", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			bootstrapErr = fmt.Errorf("create log directory: %w", err)
			return
		}
		pruneSessionLogs(logDir, keepRecentLogs)
	})
	return bootstrapErr
}

// pruneSessionLogs removes all but the newest keep session logs so the
// directory does not grow without bound. Removal is best effort and errors
// are ignored.
func pruneSessionLogs(dir string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type sessionLog struct {
		name    string
		modTime time.Time
	}
	var logs []sessionLog
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), logSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, sessionLog{name: entry.Name(), modTime: info.ModTime()})
	}
	if len(logs) <= keep {
		return
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].modTime.After(logs[j].modTime)
	})
	for _, old := range logs[keep:] {
		_ = os.Remove(filepath.Join(dir, old.name))
	}
}

// Logger tags entries with a component name and appends them to the session
// log file. Every level method writes unconditionally; there is no level
// filtering.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logPath   string
	mu        sync.Mutex
	closeOnce sync.Once
}

// NewLogger returns a logger for one component. All components in a process
// append to the same ~/.scout/logs/<session-id>-scout.log file, each through
// its own descriptor.
//
// When the directory or file cannot be created it returns a stderr logger
// together with the error. An empty LogPath marks that fallback mode.
func NewLogger(component string) (*Logger, error) {
	if err := bootstrap(); err != nil {
		return newStderrLogger(component, err), err
	}

	path := filepath.Join(logDir, sessionID+logSuffix)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("open session log: %w", err)
		return newStderrLogger(component, err), err
	}

	return &Logger{
		sessionID: sessionID,
		component: component,
		file:      file,
		logPath:   path,
	}, nil
}

// newStderrLogger builds the fallback used when file logging is unavailable.
func newStderrLogger(component string, cause error) *Logger {
	l := &Logger{sessionID: sessionID, component: component}
	l.emit("WARN", "file logging unavailable, writing to stderr: %v", cause)
	return l
}

// emit formats one entry and writes it in a single call so concurrent
// components sharing the file in append mode never interleave mid-line.
func (l *Logger) emit(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamp := time.Now().Format(timestampLayout)
	fmt.Fprintf(l.Writer(), "[%s] [%s] [%s] %s\n", stamp, l.component, level, fmt.Sprintf(format, args...))
}

// Debugf logs at DEBUG level.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.emit("DEBUG", format, v...)
}

// Infof logs at INFO level.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.emit("INFO", format, v...)
}

// Warnf logs at WARN level.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.emit("WARN", format, v...)
}

// Errorf logs at ERROR level.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.emit("ERROR", format, v...)
}

// Writer exposes the raw log destination so callers can attach their own
// log.Logger with a custom prefix.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// SessionID returns the process-wide session ID.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the session log file path, or "" in stderr fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
