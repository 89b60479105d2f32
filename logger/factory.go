package logger

import (
	"io"
	"os"

	"github.com/plainlog/plainlog/core"
	"github.com/plainlog/plainlog/formatter"
	"github.com/plainlog/plainlog/handler"
)

// Config holds the settings for the New factory helper.
type Config struct {
	// Writer receives the output (default: os.Stderr).
	Writer io.Writer
	// Level is the handler's minimum level (default: DebugLevel).
	Level core.Level
	// Formatter renders records (default: formatter.NewTextFormatter).
	Formatter core.Formatter
	// Name is the logger name (default: "root").
	Name string
	// QueueSize overrides the Core's queue capacity.
	QueueSize int
	// PushMode sets the queue-full policy.
	PushMode core.PushMode
}

// New builds a Core with a single stream handler and returns a Logger
// bound to it. There is no hidden global: the caller owns the Core and is
// responsible for stopping it (logger.Core().Close).
func New(cfg Config) (*Logger, error) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Level == 0 {
		cfg.Level = core.DebugLevel
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.Name == "" {
		cfg.Name = "root"
	}

	opts := []core.Option{core.WithPushMode(cfg.PushMode)}
	if cfg.QueueSize > 0 {
		opts = append(opts, core.WithQueueSize(cfg.QueueSize))
	}
	c := core.NewCore(opts...)

	h := handler.NewStreamHandler(cfg.Writer, cfg.Formatter)
	if _, err := c.AddHandler(h, core.WithHandlerLevel(cfg.Level)); err != nil {
		return nil, err
	}

	return NewBuilder(c).WithName(cfg.Name).Build(), nil
}
