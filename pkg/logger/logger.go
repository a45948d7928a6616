package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level - порог логирования
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel разбирает уровень из конфигурации.
// Неизвестное значение дает INFO, а не ошибку: logger нужен раньше,
// чем появляется куда репортить ошибки конфигурации.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger пишет leveled строки вида
// [timestamp] [LEVEL] message | key=value ...
// Строка собирается целиком и пишется одним Write под mutex'ом,
// чтобы конкурентные goroutine'ы не перемешивали вывод.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter создает logger с произвольным writer'ом (тесты)
func NewWithWriter(level string, out io.Writer) *Logger {
	return &Logger{out: out, level: ParseLevel(level)}
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.emit(DEBUG, msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.emit(INFO, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.emit(WARN, msg, args) }

// Error принимает err отдельным аргументом и добавляет его в пары сам
func (l *Logger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.emit(ERROR, msg, args)
}

func (l *Logger) emit(level Level, msg string, args []interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("] [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if len(args) > 0 {
		b.WriteString(" |")
		i := 0
		for ; i+1 < len(args); i += 2 {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		}
		// Непарный хвост виден в логе, а не молча потерян
		if i < len(args) {
			fmt.Fprintf(&b, " %v=<missing>", args[i])
		}
	}
	b.WriteByte('\n')

	l.mu.Lock()
	_, _ = io.WriteString(l.out, b.String())
	l.mu.Unlock()
}
