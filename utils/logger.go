package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is a nil-safe wrapper, so decoders can be called with a nil logger
// when tracing is not wanted.
type Logger struct {
	logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{FieldLogger: l}
}

// NewTextLogger creates a standalone logger writing to w.
func NewTextLogger(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	return &Logger{FieldLogger: l}
}

func (l *Logger) With(key string, value interface{}) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{FieldLogger: l.FieldLogger.WithField(key, value)}
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil {
		l.FieldLogger.Debugf(format, a...)
	}
}

func (l *Logger) Infof(format string, a ...interface{}) {
	if l != nil {
		l.FieldLogger.Infof(format, a...)
	}
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	if l != nil {
		l.FieldLogger.Warnf(format, a...)
	}
}
