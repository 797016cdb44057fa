// Package logs is the leveled logger shared by the portal packages. It wraps
// logrus with a compact text format, optional JSON output and file rotation.
package logs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey string

const ctxKeyLogID ctxKey = "log_id"

// Options selects level, format and destination of a Logger.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // text, json
	Output     string // stdout, stderr, file, both
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger is the logging surface the portal components depend on.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})

	CtxDebug(ctx context.Context, format string, v ...interface{})
	CtxInfo(ctx context.Context, format string, v ...interface{})
	CtxWarn(ctx context.Context, format string, v ...interface{})
	CtxError(ctx context.Context, format string, v ...interface{})
}

var defaultLogger = newLogrusLogger(logrus.New(), "stderr")

// Default returns the process-wide fallback logger (info level, stderr).
func Default() Logger {
	return defaultLogger
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logrusLogger{log: l}
}

// OrDefault returns l, or Default when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}

// New builds a Logger from opts.
func New(opts Options) (Logger, error) {
	log := logrus.New()

	output := strings.ToLower(strings.TrimSpace(opts.Output))
	if output == "" {
		output = "stderr"
	}
	w, file, err := buildWriter(opts, output)
	if err != nil {
		return nil, err
	}
	log.SetOutput(w)

	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&textFormatter{enableColor: shouldColorize(output)})
	}

	log.SetLevel(parseLevel(opts.Level))
	l := &logrusLogger{log: log}
	if file != nil {
		l.closer = file
	}
	return l, nil
}

// Close releases the log file held by a Logger from [New]. Loggers without
// a file, and nil, are left alone.
func Close(l Logger) error {
	if c, ok := l.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewLogID returns a fresh correlation id.
func NewLogID() string {
	return uuid.New().String()
}

// WithLogID attaches a correlation id to ctx.
func WithLogID(ctx context.Context, logID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyLogID, logID)
}

// LogID returns the correlation id carried by ctx, if any.
func LogID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyLogID).(string)
	return id
}

type logrusLogger struct {
	log    *logrus.Logger
	closer io.Closer
}

func (l *logrusLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func newLogrusLogger(log *logrus.Logger, output string) *logrusLogger {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&textFormatter{enableColor: shouldColorize(output)})
	log.SetLevel(logrus.InfoLevel)
	return &logrusLogger{log: log}
}

func (l *logrusLogger) Debug(format string, v ...interface{}) { l.log.Debugf(format, v...) }
func (l *logrusLogger) Info(format string, v ...interface{})  { l.log.Infof(format, v...) }
func (l *logrusLogger) Warn(format string, v ...interface{})  { l.log.Warnf(format, v...) }
func (l *logrusLogger) Error(format string, v ...interface{}) { l.log.Errorf(format, v...) }

func (l *logrusLogger) CtxDebug(ctx context.Context, format string, v ...interface{}) {
	l.log.WithContext(ctx).Debugf(format, v...)
}

func (l *logrusLogger) CtxInfo(ctx context.Context, format string, v ...interface{}) {
	l.log.WithContext(ctx).Infof(format, v...)
}

func (l *logrusLogger) CtxWarn(ctx context.Context, format string, v ...interface{}) {
	l.log.WithContext(ctx).Warnf(format, v...)
}

func (l *logrusLogger) CtxError(ctx context.Context, format string, v ...interface{}) {
	l.log.WithContext(ctx).Errorf(format, v...)
}

// buildWriter returns the destination for output and, when it includes a
// file, the rotating writer that owns it.
func buildWriter(opts Options, output string) (io.Writer, *lumberjack.Logger, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		w, err := newRotateWriter(opts)
		if err != nil {
			return nil, nil, err
		}
		return w, w, nil
	case "both":
		w, err := newRotateWriter(opts)
		if err != nil {
			return nil, nil, err
		}
		return &dualWriter{console: os.Stderr, file: w}, w, nil
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", output)
	}
}

type dualWriter struct {
	console io.Writer
	file    io.Writer
}

func (w *dualWriter) Write(p []byte) (int, error) {
	if _, err := w.console.Write(p); err != nil {
		return 0, err
	}
	if _, err := w.file.Write(stripANSI(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func newRotateWriter(opts Options) (*lumberjack.Logger, error) {
	if strings.TrimSpace(opts.File) == "" {
		return nil, fmt.Errorf("log file is required when output includes file")
	}
	if dir := filepath.Dir(opts.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir failed: %w", err)
		}
	}

	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = 20
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: max(opts.MaxBackups, 0),
		MaxAge:     max(opts.MaxAge, 0),
		Compress:   opts.Compress,
	}, nil
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type textFormatter struct {
	enableColor bool
}

func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(entry.Level.String())
	if f.enableColor {
		level = colorizeLevel(entry.Level, level)
	}

	logID := ""
	if entry.Context != nil {
		logID = LogID(entry.Context)
	}

	line := fmt.Sprintf("%s %s %s %s\n",
		level,
		entry.Time.Format("2006-01-02 15:04:05,000"),
		logID,
		entry.Message,
	)
	return []byte(line), nil
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(p []byte) []byte {
	return ansiPattern.ReplaceAll(p, nil)
}

func shouldColorize(output string) bool {
	if output == "file" {
		return false
	}
	return !color.NoColor
}

var (
	colorDebug = color.New(color.FgCyan)
	colorInfo  = color.New(color.FgGreen)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
)

func colorizeLevel(level logrus.Level, text string) string {
	switch level {
	case logrus.DebugLevel:
		return colorDebug.Sprint(text)
	case logrus.InfoLevel:
		return colorInfo.Sprint(text)
	case logrus.WarnLevel:
		return colorWarn.Sprint(text)
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorError.Sprint(text)
	default:
		return text
	}
}
