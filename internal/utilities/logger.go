package utilities

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antonio-alexander/go-employee-dashboard/internal"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	default:
		return zerolog.ErrorLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

type logger struct {
	zerolog.Logger
	config struct {
		level      Level
		filePath   string
		maxSize    int
		maxBackups int
		maxAge     int
		console    bool
	}
	writer io.Writer
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger creates a logger that writes to stdout until configured, an
// io.Writer given as a parameter replaces stdout.
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	l := &logger{writer: os.Stdout}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			l.writer = p
		}
	}
	l.config.level = Error
	l.build()
	return l
}

func (l *logger) build() {
	writers := []io.Writer{l.writer}
	if l.config.console {
		writers[0] = zerolog.ConsoleWriter{Out: l.writer}
	}
	if l.config.filePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   l.config.filePath,
			MaxSize:    l.config.maxSize,
			MaxBackups: l.config.maxBackups,
			MaxAge:     l.config.maxAge,
			Compress:   true,
		})
	}
	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(l.config.level.zerologLevel()).
		With().Timestamp().Logger()
}

func (l *logger) Configure(envs map[string]string) error {
	l.config.level = Error
	l.config.maxSize, l.config.maxBackups, l.config.maxAge = 10, 5, 30
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.level = atoLogLevel(logLevel)
	}
	if filePath, ok := envs["LOG_FILE_PATH"]; ok {
		l.config.filePath = filePath
	}
	if s, ok := envs["LOG_FILE_MAX_SIZE"]; ok {
		if i, err := strconv.Atoi(s); err == nil && i > 0 {
			l.config.maxSize = i
		}
	}
	if s, ok := envs["LOG_FILE_MAX_BACKUPS"]; ok {
		if i, err := strconv.Atoi(s); err == nil && i >= 0 {
			l.config.maxBackups = i
		}
	}
	if s, ok := envs["LOG_FILE_MAX_AGE"]; ok {
		if i, err := strconv.Atoi(s); err == nil && i >= 0 {
			l.config.maxAge = i
		}
	}
	if s, ok := envs["LOG_CONSOLE"]; ok {
		l.config.console, _ = strconv.ParseBool(s)
	}
	l.build()
	return nil
}

func (l *logger) event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		e = e.Str("correlation_id", correlationId)
	}
	return e
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Error()).Msgf(format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Info()).Msgf(format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Debug()).Msgf(format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Trace()).Msgf(format, v...)
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything, components fall
// back to it when they're not given a logger.
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Trace(context.Context, string, ...any) {}
