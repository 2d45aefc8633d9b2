package utils

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotatingLogger builds a logger that writes to stdout and, when path is
// non-empty, to a size-rotated file as well. Timestamps are UTC with
// microsecond precision so interleaved probe/guard lines stay ordered.
func NewRotatingLogger(prefix, path string, maxSizeMB, maxBackups, maxAgeDays int) *log.Logger {
	var w io.Writer = os.Stdout
	if path != "" {
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, rotated)
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds|log.LUTC)
}
