package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled, timestamped console logging for both commands.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugEnabled bool
}

// NewLogger creates a Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo creates a Logger that writes INFO, WARN and DEBUG lines to out
// and ERROR lines to errOut.
func NewLoggerTo(out, errOut io.Writer) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
	}
}

// SetDebug toggles DEBUG output. It is off by default.
func (l *Logger) SetDebug(enabled bool) {
	l.debugEnabled = enabled
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] \033[32mINFO\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] \033[33mWARN\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] \033[31mERROR\033[0m %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugEnabled {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s\n", l.timestamp(), format), args...)
}
