package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Handler is a slog.Handler that writes compact, pretty or JSON lines.
// Attributes keep the order in which they were added.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	// Output defaults to os.Stderr.
	Output io.Writer
	// Colors enables ANSI color codes; it is switched on automatically when
	// Output is a terminal.
	Colors bool
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		output: opts.Output,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
	}
	if h.output == nil {
		h.output = os.Stderr
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if !h.colors && h.format != FormatJSON {
		if f, ok := h.output.(*os.File); ok {
			h.colors = isTerminal(f)
		}
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := h.collect(r)

	var buf bytes.Buffer
	var err error
	switch h.format {
	case FormatPretty:
		h.writePretty(&buf, r, attrs)
	case FormatJSON:
		err = writeJSON(&buf, r, attrs)
	default:
		err = h.writeCompact(&buf, r, attrs)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new Handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &clone
}

// WithGroup returns a new Handler that prefixes subsequent keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

type field struct {
	key   string
	value any
}

func (h *Handler) collect(r slog.Record) []field {
	fields := make([]field, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = appendAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})
	return fields
}

func appendAttr(fields []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, inner := range v.Group() {
			fields = appendAttr(fields, prefix+a.Key+".", inner)
		}
		return fields
	}
	if a.Key == "" {
		return fields
	}
	var value any
	switch v.Kind() {
	case slog.KindDuration:
		value = v.Duration().String()
	case slog.KindTime:
		value = v.Time().Format(time.RFC3339)
	default:
		value = v.Any()
		if err, ok := value.(error); ok {
			value = err.Error()
		}
	}
	return append(fields, field{key: prefix + a.Key, value: value})
}

// writeCompact renders "2006-01-02 15:04:05 LEVEL message -> {attrs}".
func (h *Handler) writeCompact(buf *bytes.Buffer, r slog.Record, fields []field) error {
	buf.WriteString(r.Time.Format(time.DateTime))
	buf.WriteByte(' ')
	h.writeLevel(buf, r.Level, "%5s")
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	if len(fields) > 0 {
		buf.WriteString(" -> ")
		if err := writeObject(buf, fields); err != nil {
			return err
		}
	}
	buf.WriteByte('\n')
	return nil
}

// writePretty renders the header line followed by one attribute per line.
func (h *Handler) writePretty(buf *bytes.Buffer, r slog.Record, fields []field) {
	buf.WriteString(r.Time.Format(time.DateTime))
	buf.WriteByte(' ')
	h.writeLevel(buf, r.Level, "%-6s")
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.WriteByte('\n')

	indent := strings.Repeat(" ", len(time.DateTime)+1)
	for i, f := range fields {
		buf.WriteString(indent)
		if i == len(fields)-1 {
			buf.WriteString("`- ")
		} else {
			buf.WriteString("|- ")
		}
		fmt.Fprintf(buf, "%s: %v\n", f.key, f.value)
	}
}

func writeJSON(buf *bytes.Buffer, r slog.Record, fields []field) error {
	all := make([]field, 0, len(fields)+3)
	all = append(all,
		field{key: slog.TimeKey, value: r.Time.Format(time.RFC3339)},
		field{key: slog.LevelKey, value: levelString(r.Level)},
		field{key: slog.MessageKey, value: r.Message},
	)
	all = append(all, fields...)
	if err := writeObject(buf, all); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return nil
}

// writeObject encodes fields as a JSON object, preserving their order.
func writeObject(buf *bytes.Buffer, fields []field) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			value, _ = json.Marshal(fmt.Sprint(f.value))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

func (h *Handler) writeLevel(buf *bytes.Buffer, level slog.Level, layout string) {
	label := fmt.Sprintf(layout, levelString(level))
	if !h.colors {
		buf.WriteString(label)
		return
	}
	buf.WriteString(colorForLevel(level))
	buf.WriteString(label)
	buf.WriteString(colorReset)
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
