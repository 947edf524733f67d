package utils

import (
	"bytes"
	"github.com/rs/zerolog"
)

// LoggerWriter turns each write into one log event, e.g. to route a
// standard library *log.Logger into zerolog.
type LoggerWriter struct {
	Logger zerolog.Logger
	Level  zerolog.Level
}

func (w *LoggerWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := bytes.TrimRight(p, "\r\n")
	if len(msg) > 0 {
		w.Logger.WithLevel(w.Level).Msg(string(msg))
	}
	return n, nil
}
