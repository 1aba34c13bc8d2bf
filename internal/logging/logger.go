package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mutronic/marcaroni/internal/config"
)

// LogFileName is the file written under the log directory and, during a
// match run, under each input file's output directory.
const LogFileName = "marcaroni.log"

// Options describes logger construction parameters. OutputPaths accepts
// "stdout", "stderr" or file paths; files are opened for append.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
}

// New constructs a slog logger using the provided options. Debug loggers
// include the caller location.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	w, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	h, err := buildHandler(w, opts.Format, level, level <= slog.LevelDebug)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// NewFromConfig logs to stderr and <log_dir>/marcaroni.log. Stdout is left
// to command output.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{OutputPaths: []string{"stderr"}})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// NewFileHandler opens path for appending and returns a handler writing to
// it, plus the file so the caller can close it when the run ends.
func NewFileHandler(path, format, level string) (slog.Handler, io.Closer, error) {
	file, err := openAppend(path)
	if err != nil {
		return nil, nil, err
	}
	h, err := buildHandler(file, format, parseLevel(level), false)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return h, file, nil
}

func buildHandler(w io.Writer, format string, level slog.Level, addSource bool) (slog.Handler, error) {
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "console":
		return newConsoleHandler(w, lvl, addSource), nil
	case "json":
		return newJSONHandler(w, lvl, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", format)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutputs(paths []string) (io.Writer, error) {
	var writers []io.Writer
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		switch p {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openAppend(p)
			if err != nil {
				return nil, err
			}
			writers = append(writers, file)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// newJSONHandler emits one object per line with a UTC "ts" key and
// lower-case levels.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
