package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only critical information (errors, warnings, final summary)
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows standard run progress (default)
	LogLevelNormal
	// LogLevelVerbose shows detailed run information
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// Logger provides structured, beautiful logging for headless runs
type Logger struct {
	level  LogLevel
	writer io.Writer

	// ANSI color codes
	colorReset     string
	colorGreen     string
	colorCyan      string
	colorSalmon    string
	colorYellow    string
	colorRed       string
	colorWhite     string
	colorGray      string
	colorBoldGreen string
	colorBoldRed   string
	colorBoldWhite string

	// Run state
	startTime time.Time
	stepCount int
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		level:          level,
		writer:         os.Stdout,
		colorReset:     "\033[0m",
		colorGreen:     "\033[32m",
		colorCyan:      "\033[36m",
		colorSalmon:    "\033[38;5;217m", // Salmon pink #FFB3BA
		colorYellow:    "\033[33m",
		colorRed:       "\033[31m",
		colorWhite:     "\033[37m",
		colorGray:      "\033[90m",
		colorBoldGreen: "\033[1;32m",
		colorBoldRed:   "\033[1;31m",
		colorBoldWhite: "\033[1;37m",
		startTime:      time.Now(),
	}
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintf(l.writer, "\n%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
		fmt.Fprintf(l.writer, "%s  %s%s\n", l.colorBoldWhite, message, l.colorReset)
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	}
}

// Section prints a section divider
func (l *Logger) Section(title string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintln(l.writer)
		fmt.Fprintf(l.writer, "%s▶ %s%s\n", l.colorCyan, title, l.colorReset)
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorGray, strings.Repeat("─", 50), l.colorReset)
	}
}

// Step prints a numbered step in the run
func (l *Logger) Step(message string) {
	if l.level >= LogLevelNormal {
		l.stepCount++
		fmt.Fprintf(l.writer, "\n%s[%d] %s%s\n", l.colorCyan, l.stepCount, message, l.colorReset)
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s✓ %s%s\n", l.colorBoldGreen, msg, l.colorReset)
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorSalmon, msg, l.colorReset)
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	if l.level >= LogLevelQuiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s⚠ Warning: %s%s\n", l.colorYellow, msg, l.colorReset)
	}
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.level >= LogLevelQuiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s✗ Error: %s%s\n", l.colorBoldRed, msg, l.colorReset)
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s→ %s%s\n", l.colorGray, msg, l.colorReset)
	}
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s[DEBUG] %s%s\n", l.colorGray, msg, l.colorReset)
	}
}

// Question logs a prompt being driven through the agent
func (l *Logger) Question(n, total int, prompt string) {
	switch l.level {
	case LogLevelQuiet:
		// Don't log individual prompts in quiet mode
	case LogLevelNormal:
		// Show compact progress indicator
		fmt.Fprintf(l.writer, "%s  • prompt %d/%d%s\n", l.colorGray, n, total, l.colorReset)
	case LogLevelVerbose, LogLevelDebug:
		// Show the prompt text
		fmt.Fprintf(l.writer, "%s  ❓ Prompt %d/%d: %s%s\n", l.colorCyan, n, total, firstLine(prompt), l.colorReset)
	}
}

// ResourceLoaded logs a loaded source
func (l *Logger) ResourceLoaded(title string, textBytes, linkCount int, truncated bool) {
	if l.level >= LogLevelNormal {
		suffix := ""
		if truncated {
			suffix = " [truncated]"
		}
		fmt.Fprintf(l.writer, "%s  📄 Loaded: %s (%s bytes, %d links)%s%s\n",
			l.colorBoldGreen, title, formatNumber(textBytes), linkCount, suffix, l.colorReset)
	}
}

// Navigation logs a directive navigation
func (l *Logger) Navigation(url string, ok bool, detail string) {
	if l.level >= LogLevelNormal {
		if ok {
			fmt.Fprintf(l.writer, "%s  🧭 %s%s\n", l.colorCyan, url, l.colorReset)
			if detail != "" && l.level >= LogLevelVerbose {
				fmt.Fprintf(l.writer, "%s    %s%s\n", l.colorGray, detail, l.colorReset)
			}
		} else {
			fmt.Fprintf(l.writer, "%s  ✗ navigation failed: %s%s\n", l.colorBoldRed, url, l.colorReset)
			if detail != "" {
				fmt.Fprintf(l.writer, "%s    %s%s\n", l.colorGray, detail, l.colorReset)
			}
		}
	}
}

// Progress shows a progress update (dots, spinner, etc.)
func (l *Logger) Progress(message string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintf(l.writer, "%s  %s%s", l.colorGray, message, l.colorReset)
	}
}

// Summary prints a final run summary
func (l *Logger) Summary(status string, summary *RunSummary) {
	if l.level < LogLevelQuiet {
		return
	}

	l.printSummaryHeader()
	l.printStatus(status)
	l.printSourceAndDuration(summary)
	l.printMetrics(summary)
	l.printNavigations(summary)
	l.printError(summary)
	l.printSummaryFooter()
}

func (l *Logger) printSummaryHeader() {
	fmt.Fprintln(l.writer)
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	fmt.Fprintf(l.writer, "%s  RUN SUMMARY%s\n", l.colorBoldWhite, l.colorReset)
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
}

func (l *Logger) printStatus(status string) {
	fmt.Fprint(l.writer, "  Status: ")
	switch status {
	case statusSuccess:
		fmt.Fprintf(l.writer, "%s✓ SUCCESS%s\n", l.colorBoldGreen, l.colorReset)
	case statusPartialSuccess:
		fmt.Fprintf(l.writer, "%s⚠ PARTIAL SUCCESS%s\n", l.colorYellow, l.colorReset)
	case statusFailed:
		fmt.Fprintf(l.writer, "%s✗ FAILED%s\n", l.colorBoldRed, l.colorReset)
	default:
		fmt.Fprintln(l.writer, status)
	}
}

func (l *Logger) printSourceAndDuration(summary *RunSummary) {
	fmt.Fprintf(l.writer, "  Source: %s\n", summary.Source)
	if summary.SourceTitle != "" {
		fmt.Fprintf(l.writer, "  Title: %s\n", summary.SourceTitle)
	}
	fmt.Fprintf(l.writer, "  Task: %s\n", summary.Task)
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Second))
}

func (l *Logger) printMetrics(summary *RunSummary) {
	if summary.Metrics.Turns == 0 {
		return
	}

	fmt.Fprintf(l.writer, "\n  📊 Metrics:\n")
	fmt.Fprintf(l.writer, "    Turns: %d\n", summary.Metrics.Turns)

	if summary.Metrics.Navigations > 0 {
		fmt.Fprintf(l.writer, "    Navigations: %d\n", summary.Metrics.Navigations)
	}

	if summary.Metrics.TokensUsed > 0 {
		fmt.Fprintf(l.writer, "    Tokens used: %s\n", formatNumber(summary.Metrics.TokensUsed))
	}
}

func (l *Logger) printNavigations(summary *RunSummary) {
	if l.level < LogLevelVerbose || len(summary.Navigations) == 0 {
		return
	}

	fmt.Fprintf(l.writer, "\n  🧭 Navigations:\n")
	for _, nav := range summary.Navigations {
		if nav.Error != "" {
			fmt.Fprintf(l.writer, "%s    ✗ %s (%s)%s\n", l.colorBoldRed, nav.URL, nav.Error, l.colorReset)
		} else {
			fmt.Fprintf(l.writer, "    • %s (%s)\n", nav.URL, nav.Duration)
		}
	}
}

func (l *Logger) printError(summary *RunSummary) {
	if summary.Error == "" {
		return
	}

	fmt.Fprintln(l.writer)
	fmt.Fprintf(l.writer, "%s  Error Details:%s\n", l.colorBoldRed, l.colorReset)
	fmt.Fprintf(l.writer, "%s    %s%s\n", l.colorRed, summary.Error, l.colorReset)
}

func (l *Logger) printSummaryFooter() {
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	fmt.Fprintln(l.writer)
}

// Newline adds a blank line (respects log level)
func (l *Logger) Newline() {
	if l.level >= LogLevelNormal {
		fmt.Fprintln(l.writer)
	}
}

// parseLogLevel converts a string log level to LogLevel type
func parseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "normal":
		return LogLevelNormal
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

// formatNumber formats large numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}

// firstLine returns the first line of a multi-line prompt for display
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
