package handler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/plainlog/plainlog/core"
	"github.com/plainlog/plainlog/formatter"
)

// FileHandler writes formatted records to a file with optional rotation.
// Writes are synchronous; queueing already happened in the Core, so by the
// time Handle runs there is no caller to slow down.
type FileHandler struct {
	mu             sync.Mutex
	filename       string
	file           *os.File
	fmt            core.Formatter
	buf            bytes.Buffer
	maxSize        int64
	maxBackups     int
	rotateInterval time.Duration
	watch          bool
	currentSize    int64
	lastRotate     time.Time
	lastWatch      time.Time
	fileInfo       os.FileInfo
	closed         bool
}

// FileConfig holds configuration for a file handler.
type FileConfig struct {
	// Filename is the path to the log file.
	Filename string

	// Formatter to use (default: TextFormatter).
	Formatter core.Formatter

	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation).
	MaxSize int64

	// MaxBackups is the maximum number of rotated files to retain (0 = keep all).
	MaxBackups int

	// RotateInterval rotates the file after the given duration (0 = no interval rotation).
	RotateInterval time.Duration

	// Watch reopens the file when it is moved or deleted underneath the
	// handler, as external log rotation tools do.
	Watch bool
}

// NewFileHandler creates a file handler, creating parent directories as
// needed.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}

	dir := filepath.Dir(cfg.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	h := &FileHandler{
		filename:       cfg.Filename,
		fmt:            cfg.Formatter,
		maxSize:        cfg.MaxSize,
		maxBackups:     cfg.MaxBackups,
		rotateInterval: cfg.RotateInterval,
		watch:          cfg.Watch,
		lastRotate:     time.Now(),
	}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

// SetFormatter replaces the handler's formatter.
func (h *FileHandler) SetFormatter(f core.Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f != nil {
		h.fmt = f
	}
}

// open opens or creates the log file. Callers must hold h.mu or be the
// constructor.
func (h *FileHandler) open() error {
	file, err := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	h.file = file
	h.fileInfo = info
	h.currentSize = info.Size()
	return nil
}

// Handle formats and writes a single record.
func (h *FileHandler) Handle(r *core.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	if h.watch {
		h.reopenIfChanged()
	}
	if err := h.rotateIfNeeded(); err != nil {
		return err
	}

	var data []byte
	if bf, ok := h.fmt.(formatter.BufferFormatter); ok {
		h.buf.Reset()
		bf.FormatRecord(r, &h.buf)
		data = h.buf.Bytes()
	} else {
		var err error
		data, err = h.fmt.Format(r)
		if err != nil {
			return err
		}
	}

	n, err := h.file.Write(data)
	h.currentSize += int64(n)
	return err
}

// reopenIfChanged reopens the file when the path no longer refers to the
// open file, throttled to once per second.
func (h *FileHandler) reopenIfChanged() {
	now := time.Now()
	if now.Sub(h.lastWatch) < time.Second {
		return
	}
	h.lastWatch = now

	info, err := os.Stat(h.filename)
	if err == nil && os.SameFile(info, h.fileInfo) {
		return
	}

	// Moved or deleted underneath us; start a fresh file.
	h.file.Close()
	if err := h.open(); err != nil {
		h.file = nil
	}
}

// rotateIfNeeded checks the rotation conditions. Callers must hold h.mu.
func (h *FileHandler) rotateIfNeeded() error {
	if h.file == nil {
		return h.open()
	}

	needRotate := false
	if h.maxSize > 0 && h.currentSize >= h.maxSize {
		needRotate = true
	}
	if h.rotateInterval > 0 && time.Since(h.lastRotate) >= h.rotateInterval {
		needRotate = true
	}
	if !needRotate {
		return nil
	}
	return h.rotate()
}

// rotate renames the current file with a timestamp suffix and opens a new
// one.
func (h *FileHandler) rotate() error {
	if err := h.file.Sync(); err != nil {
		return err
	}
	if err := h.file.Close(); err != nil {
		return err
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05")
	rotatedName := fmt.Sprintf("%s.%s", h.filename, timestamp)

	if err := os.Rename(h.filename, rotatedName); err != nil {
		if openErr := h.open(); openErr != nil {
			return fmt.Errorf("rotation failed: %v, reopen failed: %v", err, openErr)
		}
		return err
	}

	if h.maxBackups > 0 {
		h.cleanupOldBackups()
	}

	if err := h.open(); err != nil {
		return err
	}
	h.lastRotate = time.Now()
	return nil
}

// cleanupOldBackups removes the oldest rotated files beyond MaxBackups.
func (h *FileHandler) cleanupOldBackups() {
	dir := filepath.Dir(h.filename)
	base := filepath.Base(h.filename)

	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}

	var backups []string
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), base+".") {
			backups = append(backups, match)
		}
	}

	sort.Slice(backups, func(i, j int) bool {
		infoI, errI := os.Stat(backups[i])
		infoJ, errJ := os.Stat(backups[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().Before(infoJ.ModTime())
	})

	if len(backups) > h.maxBackups {
		for _, file := range backups[:len(backups)-h.maxBackups] {
			if err := os.Remove(file); err != nil {
				return
			}
		}
	}
}

// Close syncs and closes the file.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	if h.file == nil {
		return nil
	}
	syncErr := h.file.Sync()
	closeErr := h.file.Close()
	h.file = nil
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
