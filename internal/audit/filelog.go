package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Amir23156/BottleAsec/internal/clock"
)

// ErrInvalidName is returned for log names that would escape the log directory.
var ErrInvalidName = errors.New("INVALID_LOG_NAME")

// FileLog writes per-name step logs under one directory. Appends to different
// names never share a writer; appends to the same name are serialized.
type FileLog struct {
	dir       string
	maxSizeMB int
	clock     clock.Clock

	mu      sync.Mutex
	writers map[string]*lumberjack.Logger
}

// NewFileLog creates the directory if needed.
func NewFileLog(dir string, maxSizeMB int, clk clock.Clock) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &FileLog{
		dir:       dir,
		maxSizeMB: maxSizeMB,
		clock:     clk,
		writers:   make(map[string]*lumberjack.Logger),
	}, nil
}

// Path returns the file that holds the log of name.
func (f *FileLog) Path(name string) string {
	return filepath.Join(f.dir, "log-"+name+".txt")
}

// Append writes "[<timestamp>] <message>" as one line to the log of name.
func (f *FileLog) Append(name, message string) error {
	w, err := f.writer(name)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("[%s] %s\n", f.clock.Now().Format(time.RFC3339), message)
	if _, err := w.Write([]byte(line)); err != nil {
		return fmt.Errorf("failed to append to %s: %w", f.Path(name), err)
	}
	return nil
}

// Close closes every open writer.
func (f *FileLog) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, w := range f.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(f.writers, name)
	}
	return errors.Join(errs...)
}

func (f *FileLog) writer(name string) (*lumberjack.Logger, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok := f.writers[name]; ok {
		return w, nil
	}
	w := &lumberjack.Logger{
		Filename: f.Path(name),
		MaxSize:  f.maxSizeMB,
	}
	f.writers[name] = w
	return w, nil
}
