package chatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	dirMode  os.FileMode = 0755
	fileMode os.FileMode = 0644
)

// Owns the open log files of a fixed set of channels.
//
// A Manager is safe for concurrent use. A reload creates a new Manager for
// the new channel set and closes the old one.
type Manager struct {
	dir   string              // Directory holding the log files.
	files map[string]*os.File // Open files keyed by channel ("#name").
	now   func() time.Time    // Clock used to stamp records.
	mu    sync.Mutex          // Serializes writes and close.
}

// Returns the file name used for a channel's log.
func FileName(channel string) string {
	return strings.TrimPrefix(channel, "#") + ".txt"
}

// Creates dir if needed and opens a log file for every channel.
//
// Files are opened in append mode and created when missing. Each receives an
// OPEN record stamped with opened. If any file cannot be opened, the ones
// already opened are closed and an error is returned.
func Open(dir string, channels []string, opened time.Time) (*Manager, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrLogFile, dir, err)
	}

	m := &Manager{
		dir:   dir,
		files: make(map[string]*os.File, len(channels)),
		now:   time.Now,
	}

	header, err := Record{Command: CommandOpen, Time: opened.Local().Format(TimeLayout)}.MarshalLine()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFile, err)
	}

	for _, channel := range channels {
		f, err := openFile(filepath.Join(dir, FileName(channel)), header)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.files[channel] = f
	}

	return m, nil
}

// Opens path for appending and writes the header line.
func openFile(path string, header []byte) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, fileMode)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrLogFile, path, err)
	}

	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: writing header to %s: %w", ErrLogFile, path, err)
	}

	return f, nil
}

// Appends a record to the channel's log, stamping it with the current time.
//
// Returns [ErrNoLogFile] if the channel has no open file.
func (m *Manager) Write(channel string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[channel]
	if !ok {
		return errors.Wrapf(ErrNoLogFile, "%s", channel)
	}

	rec.Time = m.now().Local().Format(TimeLayout)
	line, err := rec.MarshalLine()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLogFile, err)
	}

	// A single write per line keeps lines whole under O_APPEND.
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("%w: appending to %s: %w", ErrLogFile, f.Name(), err)
	}
	return nil
}

// Returns the directory holding the log files.
func (m *Manager) Dir() string {
	return m.dir
}

// Returns the path of the channel's log file.
func (m *Manager) Path(channel string) string {
	return filepath.Join(m.dir, FileName(channel))
}

// Returns the channels with an open file, sorted.
func (m *Manager) Channels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	channels := make([]string, 0, len(m.files))
	for c := range m.files {
		channels = append(channels, c)
	}
	slices.Sort(channels)
	return channels
}

// Closes every file. Later writes fail with [ErrNoLogFile].
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for channel, f := range m.files {
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("%w: closing %s: %w", ErrLogFile, f.Name(), err)
		}
		delete(m.files, channel)
	}
	return first
}
