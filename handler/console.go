package handler

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/plainlog/plainlog/core"
	"github.com/plainlog/plainlog/formatter"
)

// ConsoleHandler writes colored output to a terminal. On Windows the ANSI
// sequences are translated by go-colorable; on other platforms the stream
// is used as is. Colors are disabled automatically when the target is not
// a terminal.
type ConsoleHandler struct {
	*StreamHandler
}

// ConsoleConfig configures a console handler.
type ConsoleConfig struct {
	// Stderr selects os.Stderr instead of os.Stdout.
	Stderr bool

	// NoColor forces plain output even on a terminal.
	NoColor bool

	// TimestampFormat overrides the console formatter's time layout.
	TimestampFormat string
}

// NewConsoleHandler creates a console handler for stdout or stderr.
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	f := os.Stdout
	if cfg.Stderr {
		f = os.Stderr
	}

	colors := !cfg.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))

	cf := formatter.NewConsoleFormatter(colors)
	if cfg.TimestampFormat != "" {
		cf.TimestampFormat = cfg.TimestampFormat
	}

	var h *ConsoleHandler
	if colors {
		h = &ConsoleHandler{StreamHandler: NewStreamHandler(colorable.NewColorable(f), cf)}
	} else {
		h = &ConsoleHandler{StreamHandler: NewStreamHandler(colorable.NewNonColorable(f), cf)}
	}
	return h
}

var _ core.Handler = (*ConsoleHandler)(nil)
