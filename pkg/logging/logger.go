// Package logging provides the review engine's singleton file logger,
// adapted from the workspace logger pattern: a lumberjack-backed
// rotating file, an optional JSON-line mode, and a correlation id
// threaded through one review's log lines.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	instance *Logger
	once     sync.Once
)

// Logger wraps a stdlib *log.Logger backed by a rotating file, with an
// optional structured JSON mode.
type Logger struct {
	mu            sync.Mutex
	base          *log.Logger
	jsonMode      bool
	correlationID string
	file          *lumberjack.Logger
}

type jsonLine struct {
	Time          string `json:"time"`
	Level         string `json:"level"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Get returns the process-wide Logger singleton, creating the log
// directory and rotating file on first use.
func Get() *Logger {
	once.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir := filepath.Join(home, ".canvasreview")
		_ = os.MkdirAll(dir, 0o755)

		file := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "review.log"),
			MaxSize:    15,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}

		instance = &Logger{
			base:          log.New(file, "", 0),
			jsonMode:      os.Getenv("CANVASREVIEW_JSON_LOGS") == "1",
			correlationID: os.Getenv("CANVASREVIEW_CORRELATION_ID"),
			file:          file,
		}
	})
	return instance
}

// WithCorrelationID returns a shallow copy of the logger scoped to the
// given id, used to tag every log line emitted during one review.
func (l *Logger) WithCorrelationID(id string) *Logger {
	clone := *l
	clone.correlationID = id
	return &clone
}

func (l *Logger) write(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		line := jsonLine{
			Time:          time.Now().UTC().Format(time.RFC3339),
			Level:         level,
			Message:       msg,
			CorrelationID: l.correlationID,
		}
		b, err := json.Marshal(line)
		if err != nil {
			l.base.Println(msg)
			return
		}
		l.base.Println(string(b))
		return
	}

	if l.correlationID != "" {
		l.base.Printf("[%s] %s: %s", l.correlationID, level, msg)
		return
	}
	l.base.Printf("%s: %s", level, msg)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.write("DEBUG", fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.write("INFO", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.write("WARN", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.write("ERROR", fmt.Sprintf(format, args...))
}

// Close flushes and closes the underlying rotating file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
