package chain

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var _eventsBucket = []byte("events")

// BoltEventStore persists events in a bbolt file, one entry per sequence
// number. Keys are big-endian so cursor order is replay order.
type BoltEventStore struct {
	db *bolt.DB
}

// NewBoltEventStore opens (or creates) the event log at path.
func NewBoltEventStore(path string) (*BoltEventStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open event store %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(_eventsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create events bucket")
	}
	return &BoltEventStore{db: db}, nil
}

// Append assigns the next sequence number and writes the event.
func (s *BoltEventStore) Append(ev Event) (Event, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(_eventsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		ev.Seq = seq
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return bucket.Put(key[:], data)
	})
	if err != nil {
		return Event{}, errors.Wrap(err, "append event")
	}
	return ev, nil
}

// ForEach replays all events in append order.
func (s *BoltEventStore) ForEach(fn func(Event) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(_eventsBucket).ForEach(func(_, v []byte) error {
			var ev Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return errors.Wrap(err, "decode event")
			}
			return fn(ev)
		})
	})
}

// Close releases the underlying bbolt file.
func (s *BoltEventStore) Close() error {
	return s.db.Close()
}

// MemoryEventStore keeps the log in memory. Tests and ephemeral runs use it.
type MemoryEventStore struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryEventStore builds an empty in-memory log.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

// Append assigns the next sequence number and records the event.
func (s *MemoryEventStore) Append(ev Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.Seq = uint64(len(s.events)) + 1
	s.events = append(s.events, ev)
	return ev, nil
}

// ForEach replays all events in append order.
func (s *MemoryEventStore) ForEach(fn func(Event) error) error {
	s.mu.Lock()
	snapshot := make([]Event, len(s.events))
	copy(snapshot, s.events)
	s.mu.Unlock()
	for _, ev := range snapshot {
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryEventStore) Close() error { return nil }
