package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/plainlog/plainlog/core"
)

// TextFormatter renders records as one human-readable line:
//
//	<time> <LEVEL>    [<logger>] <message> key=value ...
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats a record as text
func (f *TextFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatRecord(r, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a record and writes it directly to the writer
func (f *TextFormatter) FormatTo(r *core.Record, w io.Writer) error {
	buf := getBuffer()

	f.FormatRecord(r, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatRecord writes the formatted record into the given buffer
// (implements BufferFormatter).
func (f *TextFormatter) FormatRecord(r *core.Record, buf *bytes.Buffer) {
	buf.Write(r.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte(' ')

	name := r.LevelName
	if name == "" {
		name = r.Level.String()
	}
	buf.WriteString(name)
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
		buf.WriteString(" error=")
		buf.WriteString(r.Err.Kind)
		buf.WriteString(": ")
		buf.WriteString(r.Err.Message)
	}

	buf.WriteByte('\n')
}

func writeFields(buf *bytes.Buffer, fields []core.Field) {
	for _, field := range fields {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	}
}
