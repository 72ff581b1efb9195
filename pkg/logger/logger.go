package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes leveled messages. A nil *Logger discards everything, so
// library code can log through an unset logger.
type Logger struct {
	verbose bool
	out     io.Writer
	logger  *log.Logger
}

func New(verbose bool) *Logger {
	return &Logger{
		verbose: verbose,
		out:     os.Stdout,
		logger:  log.New(os.Stdout, "", log.LstdFlags),
	}
}

// SetOutput redirects both leveled messages and plain prints.
func (l *Logger) SetOutput(w io.Writer) {
	if l == nil {
		return
	}
	l.out = w
	l.logger.SetOutput(w)
}

// Verbose reports whether debug messages are written.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log("[INFO] ", format, args)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("[WARN] ", format, args)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Verbose() {
		l.log("[DEBUG] ", format, args)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log("[ERROR] ", format, args)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log("[FATAL] ", format, args)
	os.Exit(1)
}

func (l *Logger) log(level, format string, args []interface{}) {
	if l == nil {
		return
	}
	l.logger.Printf(level+format, args...)
}

func (l *Logger) Print(v ...interface{}) {
	if l == nil {
		return
	}
	fmt.Fprint(l.out, v...)
}

func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

func (l *Logger) Println(v ...interface{}) {
	if l == nil {
		return
	}
	fmt.Fprintln(l.out, v...)
}
