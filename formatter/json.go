package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/plainlog/plainlog/core"
)

// JSONFormatter renders records as single-line JSON objects with the keys
// time, level, level_name, logger_name, message, context, extra and error.
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// Format formats a record as JSON
func (f *JSONFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatRecord(r, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a record as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(r *core.Record, w io.Writer) error {
	buf := getBuffer()

	f.FormatRecord(r, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatRecord builds JSON manually into the buffer without allocations
// (implements BufferFormatter).
func (f *JSONFormatter) FormatRecord(r *core.Record, buf *bytes.Buffer) {
	buf.WriteString(`{"time":"`)
	buf.Write(r.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	buf.WriteString(`,"level":`)
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(r.Level), 10))

	buf.WriteString(`,"level_name":"`)
	name := r.LevelName
	if name == "" {
		name = r.Level.String()
	}
	appendJSONString(buf, name)
	buf.WriteByte('"')

	buf.WriteString(`,"logger_name":"`)
	appendJSONString(buf, r.LoggerName)
	buf.WriteByte('"')

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, r.Message)
	buf.WriteByte('"')

	if len(r.Context) > 0 {
		buf.WriteString(`,"context":`)
		appendJSONObject(buf, r.Context)
	}
	if len(r.Extra) > 0 {
		buf.WriteString(`,"extra":`)
		appendJSONObject(buf, r.Extra)
	}

	if r.Err != nil {
		buf.WriteString(`,"error":{"kind":"`)
		appendJSONString(buf, r.Err.Kind)
		buf.WriteString(`","message":"`)
		appendJSONString(buf, r.Err.Message)
		buf.WriteString(`","trace":"`)
		appendJSONString(buf, r.Err.Stack)
		buf.WriteString(`"}`)
	}

	buf.WriteString("}\n")
}

func appendJSONObject(buf *bytes.Buffer, fields []core.Field) {
	buf.WriteByte('{')
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		appendJSONString(buf, field.Key)
		buf.WriteString(`":`)
		appendJSONFieldValue(buf, field)
	}
	buf.WriteByte('}')
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		// Flush unescaped prefix
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	// Flush remaining
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONFieldValue writes a JSON-encoded field value to the buffer
func appendJSONFieldValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.StringType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	case core.IntType, core.Int64Type:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Float64Type:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.TimeType:
		buf.WriteByte('"')
		buf.Write(time.Unix(0, field.Int64).AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case core.DurationType:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.ErrorType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	default:
		buf.WriteByte('"')
		appendJSONString(buf, field.StringValue())
		buf.WriteByte('"')
	}
}
