package profile

import (
	"fmt"
	"io"
	"os"

	"github.com/plainlog/plainlog/core"
	"github.com/plainlog/plainlog/formatter"
	"github.com/plainlog/plainlog/handler"
	"github.com/plainlog/plainlog/logger"
	"github.com/plainlog/plainlog/processor"
)

// Config selects a named profile and its parameters. Zero values fall back
// to the profile's defaults.
type Config struct {
	// Profile is the profile name (default: "default").
	Profile string `koanf:"profile"`

	// Level is the minimum level for the profile's handler, parsed with
	// core.ParseLevel (default: "DEBUG").
	Level string `koanf:"level"`

	// Filename is the log file path for the file profiles (default:
	// "plainlog.log").
	Filename string `koanf:"filename"`

	// ActionLevel is the fingers-crossed trigger level (default: "ERROR").
	ActionLevel string `koanf:"action_level"`

	// BufferSize is the fingers-crossed ring capacity (default: 1).
	BufferSize int `koanf:"buffer_size"`

	// AutoReset re-arms the fingers-crossed handler after each flush.
	AutoReset bool `koanf:"auto_reset"`

	// QueueSize overrides the Core's queue capacity.
	QueueSize int `koanf:"queue_size"`

	// Stream overrides the output writer where a profile writes to a
	// stream. Not settable from file or environment.
	Stream io.Writer `koanf:"-"`
}

// Build creates a Core configured per the named profile and returns a
// Logger bound to it. The caller owns the Core and stops it through
// logger.Core().Close.
//
// Profiles:
//
//	default             text to stderr
//	develop             colored console with caller and elapsed annotation
//	fingerscrossed      develop output behind a fingers-crossed buffer
//	simple              text to stdout
//	cloud               single-line JSON to stdout
//	json                JSON to the configured stream
//	file                text to a rotating file
//	fingerscrossed_file file output behind a fingers-crossed buffer
//	console_no_color    console formatter without ANSI colors
//	fast                minimal text output, coarse clock, no processors
//	nothing             no handlers at all
func Build(cfg Config) (*logger.Logger, error) {
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}

	level := core.DebugLevel
	if cfg.Level != "" {
		parsed, err := core.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	actionLevel := core.ErrorLevel
	if cfg.ActionLevel != "" {
		parsed, err := core.ParseLevel(cfg.ActionLevel)
		if err != nil {
			return nil, err
		}
		actionLevel = parsed
	}

	stream := cfg.Stream
	if stream == nil {
		stream = os.Stderr
	}
	filename := cfg.Filename
	if filename == "" {
		filename = "plainlog.log"
	}

	var opts []core.Option
	if cfg.QueueSize > 0 {
		opts = append(opts, core.WithQueueSize(cfg.QueueSize))
	}
	c := core.NewCore(opts...)

	b := logger.NewBuilder(c)

	fail := func(err error) (*logger.Logger, error) {
		c.Close(0)
		return nil, err
	}

	switch cfg.Profile {
	case "default":
		h := handler.NewStreamHandler(stream, formatter.NewTextFormatter(formatter.Config{}))
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "develop":
		h := handler.NewConsoleHandler(handler.ConsoleConfig{Stderr: true})
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}
		b.WithPreprocessors(processor.Caller(0), processor.Elapsed())

	case "fingerscrossed":
		fc := handler.NewFingersCrossedHandler(handler.FingersCrossedConfig{
			Handler:     handler.NewConsoleHandler(handler.ConsoleConfig{Stderr: true}),
			ActionLevel: actionLevel,
			BufferSize:  cfg.BufferSize,
			AutoReset:   cfg.AutoReset,
		})
		if _, err := c.AddHandler(fc, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}
		b.WithPreprocessors(processor.Caller(0), processor.Elapsed())

	case "simple":
		out := cfg.Stream
		if out == nil {
			out = os.Stdout
		}
		h := handler.NewStreamHandler(out, formatter.NewTextFormatter(formatter.Config{}))
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "cloud":
		out := cfg.Stream
		if out == nil {
			out = os.Stdout
		}
		h := handler.NewStreamHandler(out, formatter.NewJSONFormatter(formatter.Config{}))
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "json":
		h := handler.NewStreamHandler(stream, formatter.NewJSONFormatter(formatter.Config{}))
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "file":
		fh, err := handler.NewFileHandler(handler.FileConfig{Filename: filename})
		if err != nil {
			return fail(err)
		}
		if _, err := c.AddHandler(fh, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "fingerscrossed_file":
		fh, err := handler.NewFileHandler(handler.FileConfig{Filename: filename})
		if err != nil {
			return fail(err)
		}
		fc := handler.NewFingersCrossedHandler(handler.FingersCrossedConfig{
			Handler:     fh,
			ActionLevel: actionLevel,
			BufferSize:  cfg.BufferSize,
			AutoReset:   cfg.AutoReset,
		})
		if _, err := c.AddHandler(fc, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "console_no_color":
		h := handler.NewStreamHandler(stream, formatter.NewConsoleFormatter(false))
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}

	case "fast":
		h := handler.NewStreamHandler(stream, formatter.NewTextFormatter(formatter.Config{}))
		if _, err := c.AddHandler(h, core.WithHandlerLevel(level)); err != nil {
			return fail(err)
		}
		b.WithCoarseClock(true)

	case "nothing":
		// No handlers; records are discarded at the level gate.

	default:
		c.Close(0)
		return nil, fmt.Errorf("unknown log profile %q", cfg.Profile)
	}

	return b.Build(), nil
}
