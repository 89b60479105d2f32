// Package formatter provides formatters that render records into bytes.
//
// All formatters implement core.Formatter. They additionally implement
// WriterFormatter and BufferFormatter so handlers can skip the
// intermediate byte slice when they already hold a buffer or a writer.
package formatter
