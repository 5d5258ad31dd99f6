package logging

import (
	"log"

	"gonet-tunnel/application"
)

// LogLogger adapts the standard library's log package to application.Logger.
type LogLogger struct{}

// NewLogLogger returns a Logger that writes through the standard log package.
func NewLogLogger() application.Logger {
	return &LogLogger{}
}

func (l LogLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}
