// Package stats keeps per-channel logging counters across restarts.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

var ErrStats = errors.New("stats store error")

// Key prefix for channel entries.
const channelPrefix = "channel/"

// Counters for one channel.
type ChannelStats struct {
	Channel     string    `json:"channel"`
	Lines       uint64    `json:"lines"`
	LastEvent   time.Time `json:"last_event"`
	LastCommand string    `json:"last_command"`
}

// Badger-backed store of [ChannelStats].
type Store struct {
	path string
	db   *badger.DB
}

// Opens or creates the store in the directory at path.
func Open(path string) (*Store, error) {
	path = filepath.Clean(path)
	if path == "" || path == "." {
		return nil, errors.Wrap(ErrStats, "store path is required")
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrStats, path, err)
	}

	options := badger.DefaultOptions(path)
	options.SyncWrites = true
	options.Logger = nil

	return open(path, options)
}

// Opens a store that lives only in memory.
func OpenInMemory() (*Store, error) {
	options := badger.DefaultOptions("").WithInMemory(true)
	options.Logger = nil
	return open("", options)
}

func open(path string, options badger.Options) (*Store, error) {
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: opening store: %w", ErrStats, err)
	}
	return &Store{path: path, db: db}, nil
}

// Returns the directory of the store, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Counts one logged line for channel.
func (s *Store) Record(channel, command string, at time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		st, _, err := get(txn, channel)
		if err != nil {
			return err
		}

		st.Channel = channel
		st.Lines++
		st.LastEvent = at
		st.LastCommand = command

		return set(txn, st)
	})
}

// Returns the counters of a channel. ok is false if nothing was recorded.
func (s *Store) Get(channel string) (st ChannelStats, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		st, ok, err = get(txn, channel)
		return err
	})
	return st, ok, err
}

// Returns the counters of every channel, ordered by channel name.
func (s *Store) All() ([]ChannelStats, error) {
	var all []ChannelStats

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(channelPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var st ChannelStats
			if err := json.Unmarshal(raw, &st); err != nil {
				return fmt.Errorf("%w: decoding %s: %w", ErrStats, it.Item().Key(), err)
			}
			all = append(all, st)
		}
		return nil
	})

	return all, err
}

// Closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func key(channel string) []byte {
	return []byte(channelPrefix + strings.ToLower(channel))
}

func get(txn *badger.Txn, channel string) (ChannelStats, bool, error) {
	item, err := txn.Get(key(channel))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ChannelStats{}, false, nil
		}
		return ChannelStats{}, false, err
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return ChannelStats{}, false, err
	}

	var st ChannelStats
	if err := json.Unmarshal(raw, &st); err != nil {
		return ChannelStats{}, false, fmt.Errorf("%w: decoding %s: %w", ErrStats, channel, err)
	}
	return st, true, nil
}

func set(txn *badger.Txn, st ChannelStats) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrStats, st.Channel, err)
	}
	return txn.Set(key(st.Channel), raw)
}
