package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/plainlog/plainlog/core"
)

// ANSI sequences used by the console renderer.
const (
	ansiReset   = "\x1b[0m"
	ansiDim     = "\x1b[2m"
	ansiCyan    = "\x1b[36m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiRed     = "\x1b[31m"
	ansiBoldRed = "\x1b[1;31m"
)

// ConsoleFormatter renders records like TextFormatter but with ANSI colors
// for interactive terminals. Colors can be disabled, which makes the
// output identical to TextFormatter with a short timestamp.
type ConsoleFormatter struct {
	Config
	// Colors enables ANSI escape sequences.
	Colors bool
}

// NewConsoleFormatter creates a console formatter. The default timestamp
// format shows only the time of day.
func NewConsoleFormatter(colors bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		Config: Config{TimestampFormat: "15:04:05.000"},
		Colors: colors,
	}
}

func levelColor(l core.Level) string {
	switch {
	case l >= core.CriticalLevel:
		return ansiBoldRed
	case l >= core.ErrorLevel:
		return ansiRed
	case l >= core.WarningLevel:
		return ansiYellow
	case l >= core.InfoLevel:
		return ansiGreen
	default:
		return ansiCyan
	}
}

// Format formats a record for the console
func (f *ConsoleFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatRecord(r, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a record and writes it directly to the writer
func (f *ConsoleFormatter) FormatTo(r *core.Record, w io.Writer) error {
	buf := getBuffer()

	f.FormatRecord(r, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatRecord writes the rendered record into the given buffer
// (implements BufferFormatter).
func (f *ConsoleFormatter) FormatRecord(r *core.Record, buf *bytes.Buffer) {
	format := f.TimestampFormat
	if format == "" {
		format = time.RFC3339
	}

	if f.Colors {
		buf.WriteString(ansiDim)
	}
	buf.Write(r.Time.AppendFormat(buf.AvailableBuffer(), format))
	if f.Colors {
		buf.WriteString(ansiReset)
	}
	buf.WriteByte(' ')

	name := r.LevelName
	if name == "" {
		name = r.Level.String()
	}
	if f.Colors {
		buf.WriteString(levelColor(r.Level))
	}
	buf.WriteString(name)
	if f.Colors {
		buf.WriteString(ansiReset)
	}
	for i := len(name); i < 8; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString(" [")
	buf.WriteString(r.LoggerName)
	buf.WriteString("] ")
	buf.WriteString(r.Message)

	writeFields(buf, r.Context)
	writeFields(buf, r.Extra)

	if r.Err != nil {
		if f.Colors {
			buf.WriteString(ansiRed)
		}
		buf.WriteString(" error=")
		buf.WriteString(r.Err.Kind)
		buf.WriteString(": ")
		buf.WriteString(r.Err.Message)
		if f.Colors {
			buf.WriteString(ansiReset)
		}
		if r.Err.Stack != "" {
			buf.WriteByte('\n')
			buf.WriteString(r.Err.Stack)
		}
	}

	buf.WriteByte('\n')
}
