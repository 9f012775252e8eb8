package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
)

// Backend is the persistent key-value store the collection is written to.
// ok is false when key has never been written.
//
// Modify reads key and writes back what fn returns as one atomic step, so
// two writers sharing a backend never overwrite each other's changes. fn
// returns write=false to leave the stored value untouched; an error from fn
// aborts without writing and is returned unchanged.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Modify(ctx context.Context, key string, fn func(value string, ok bool) (next string, write bool, err error)) error
}

// Options configures a Store.
type Options struct {
	// Key is the storage key the collection lives under (default "contacts").
	Key string

	// SkipSeed persists an empty collection on first run instead of the samples.
	SkipSeed bool

	// Now is the clock; defaults to time.Now.
	Now func() time.Time

	// NewID generates contact ids; defaults to contact.NewID.
	NewID func() string
}

// OptionsFromConfig derives store options from application config.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{Key: cfg.StorageKey, SkipSeed: cfg.SkipSeed}
}

// Store owns the ordered contact collection and mediates every write to the
// backend. All methods are safe for concurrent use. Every call reads the
// backend afresh, so several Stores (or processes) may share one database;
// the in-memory copy is only the result of the last read or write.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	key      string
	skipSeed bool
	now      func() time.Time
	newID    func() string

	contacts []contact.Contact
}

// New returns a Store over backend. Nothing is read until the first call.
func New(backend Backend, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = config.DefaultStorageKey
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = contact.NewID
	}
	return &Store{
		backend:  backend,
		key:      opts.Key,
		skipSeed: opts.SkipSeed,
		now:      opts.Now,
		newID:    opts.NewID,
	}
}

// Open creates a Store and loads the persisted collection.
func Open(ctx context.Context, backend Backend, opts Options) (*Store, error) {
	s := New(backend, opts)
	if _, err := s.LoadAll(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadAll reads the persisted collection into memory and returns a copy.
// On first run the seed set is persisted and returned.
func (s *Store) LoadAll(ctx context.Context) ([]contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return contact.CloneAll(s.contacts), nil
}

// load reads the backend into s.contacts, seeding it on first run.
// Callers hold s.mu.
func (s *Store) load(ctx context.Context) error {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return asStorageError(err)
	}
	if !ok {
		// Seeding is a write; it goes through mutate so a concurrent first
		// run in another process is not clobbered.
		_, err := s.mutate(ctx, func(cur []contact.Contact) ([]contact.Contact, bool, error) {
			return cur, false, nil
		})
		return err
	}

	contacts, err := decode(raw)
	if err != nil {
		return err
	}
	s.contacts = contacts
	log.Debug().Int("contacts", len(contacts)).Msg("collection loaded")
	return nil
}

// mutate applies fn to the collection as currently persisted and writes the
// result in the same backend transaction. fn must not modify cur in place.
// s.contacts only changes once the write has succeeded. An absent collection
// is seeded first and always written. Callers hold s.mu.
func (s *Store) mutate(ctx context.Context, fn func(cur []contact.Contact) (next []contact.Contact, changed bool, err error)) ([]contact.Contact, error) {
	var result []contact.Contact
	seeded := false

	err := s.backend.Modify(ctx, s.key, func(raw string, ok bool) (string, bool, error) {
		var cur []contact.Contact
		if ok {
			decoded, err := decode(raw)
			if err != nil {
				return "", false, err
			}
			cur = decoded
		} else {
			cur = []contact.Contact{}
			if !s.skipSeed {
				cur = contact.Seed(s.now())
			}
			seeded = true
		}

		next, changed, err := fn(cur)
		if err != nil {
			return "", false, err
		}
		result = next
		if !changed && !seeded {
			return "", false, nil
		}
		data, err := encode(next)
		if err != nil {
			return "", false, err
		}
		return data, true, nil
	})
	if err != nil {
		return nil, asStorageError(err)
	}

	if result == nil {
		result = []contact.Contact{}
	}
	s.contacts = result
	if seeded {
		log.Info().Int("contacts", len(result)).Msg("first run, collection initialized")
	}
	return result, nil
}

// SaveAll replaces the entire persisted collection with contacts.
func (s *Store) SaveAll(ctx context.Context, contacts []contact.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := contact.CloneAll(contacts)
	data, err := encode(next)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return asStorageError(err)
	}
	if next == nil {
		next = []contact.Contact{}
	}
	s.contacts = next
	return nil
}

func decode(raw string) ([]contact.Contact, error) {
	var contacts []contact.Contact
	if err := json.Unmarshal([]byte(raw), &contacts); err != nil {
		return nil, errors.NewStorageUnavailable(fmt.Errorf("stored collection is not valid JSON: %w", err))
	}
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	for i := range contacts {
		if contacts[i].Methods == nil {
			contacts[i].Methods = []contact.Method{}
		}
	}
	return contacts, nil
}

func encode(contacts []contact.Contact) (string, error) {
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	data, err := json.Marshal(contacts)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

func indexOf(contacts []contact.Contact, id string) int {
	for i, c := range contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func asStorageError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewStorageUnavailable(err)
}
