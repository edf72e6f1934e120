package logging

import (
	"io"
	"log"
	"multitun/application/logging"
)

// LogLogger writes through a *log.Logger. The zero value uses the standard logger.
type LogLogger struct {
	logger *log.Logger
}

func NewLogLogger() logging.Logger {
	return &LogLogger{}
}

// NewPrefixedLogLogger builds a logger with its own prefix and destination,
// independent from the process-wide standard logger.
func NewPrefixedLogLogger(prefix string, w io.Writer) logging.Logger {
	return &LogLogger{logger: log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)}
}

func NewNopLogger() logging.Logger {
	return &LogLogger{logger: log.New(io.Discard, "", 0)}
}

func (l LogLogger) Printf(format string, v ...any) {
	if l.logger == nil {
		log.Printf(format, v...)
		return
	}
	l.logger.Printf(format, v...)
}
