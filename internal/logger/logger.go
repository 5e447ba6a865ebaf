package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	MaxLogSizeMB  = 5
	MaxLogBackups = 2
	MaxLogAgeDays = 28
)

var (
	mu     sync.Mutex
	logger = log.New(os.Stderr, "", 0)
	closer io.Closer
	debug  bool
)

// Init sends log output to stderr and, when path is set, to a rotated log file.
func Init(path string, enableDebug bool) {
	mu.Lock()
	defer mu.Unlock()

	debug = enableDebug
	if path == "" {
		logger = log.New(os.Stderr, "", 0)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxLogSizeMB,
		MaxBackups: MaxLogBackups,
		MaxAge:     MaxLogAgeDays,
	}
	closer = rotator
	logger = log.New(io.MultiWriter(os.Stderr, rotator), "", 0)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = log.New(w, "", 0)
	mu.Unlock()
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
		closer = nil
	}
}

func write(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	mu.Lock()
	logger.Printf("[%s] %s: %s", timestamp, level, msg)
	mu.Unlock()
}

// Info logs at info level
func Info(format string, args ...interface{}) {
	write("INFO", format, args...)
}

// Error logs at error level
func Error(format string, args ...interface{}) {
	write("ERROR", format, args...)
}

// Debug logs only when debug output is enabled
func Debug(format string, args ...interface{}) {
	mu.Lock()
	enabled := debug
	mu.Unlock()
	if enabled {
		write("DEBUG", format, args...)
	}
}
