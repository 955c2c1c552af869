package stdlog

import (
	"fmt"
	"io"
	"log"

	"github.com/kndndrj/chhttp/models"
)

var _ models.Logger = (*Logger)(nil)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger prints "[level]: message" lines through a standard library logger.
// Messages below the minimum level are dropped.
type Logger struct {
	logger *log.Logger
	min    Level
}

func New(w io.Writer, min Level) *Logger {
	return &Logger{
		logger: log.New(w, "", log.Ldate|log.Ltime),
		min:    min,
	}
}

func (l *Logger) log(level Level, message string) {
	if level < l.min {
		return
	}
	l.logger.Printf("[%s]: %s", level, message)
}

func (l *Logger) Debug(msg string) {
	l.log(LevelDebug, msg)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(msg string) {
	l.log(LevelInfo, msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(msg string) {
	l.log(LevelWarn, msg)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) {
	l.log(LevelError, msg)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}
