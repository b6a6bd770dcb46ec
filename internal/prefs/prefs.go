package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"pppoed/internal/model"
)

var (
	bucketPreferences = []byte("preferences")
	keyProfile        = []byte("profile")
	keyNotifications  = []byte("notifications")
)

// Store persists operator preferences in a BoltDB file. Values are
// loaded once at open and cached; every mutation writes through.
type Store struct {
	mu            sync.RWMutex
	db            *bolt.DB
	profile       model.Profile
	notifications model.NotificationPreferences
}

// Open opens or creates the preference database
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(dataDir, "prefs.db")
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPreferences)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	s := &Store{
		db:            db,
		profile:       model.DefaultProfile(),
		notifications: model.DefaultNotificationPreferences(),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the preference database
func (s *Store) Close() error {
	return s.db.Close()
}

// load reads any persisted values over the defaults
func (s *Store) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreferences)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketPreferences)
		}
		if data := b.Get(keyProfile); data != nil {
			if err := json.Unmarshal(data, &s.profile); err != nil {
				return fmt.Errorf("decoding profile: %w", err)
			}
		}
		if data := b.Get(keyNotifications); data != nil {
			if err := json.Unmarshal(data, &s.notifications); err != nil {
				return fmt.Errorf("decoding notification preferences: %w", err)
			}
		}
		return nil
	})
}

// Profile returns the cached operator profile
func (s *Store) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SaveProfile persists and caches a new profile
func (s *Store) SaveProfile(profile model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.put(keyProfile, profile); err != nil {
		return err
	}
	s.profile = profile
	return nil
}

// Notifications returns the cached notification preferences
func (s *Store) Notifications() model.NotificationPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications
}

// SaveNotifications persists and caches new notification preferences
func (s *Store) SaveNotifications(prefs model.NotificationPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.put(keyNotifications, prefs); err != nil {
		return err
	}
	s.notifications = prefs
	return nil
}

// Reset restores the defaults and persists them
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := model.DefaultProfile()
	notifications := model.DefaultNotificationPreferences()

	if err := s.put(keyProfile, profile); err != nil {
		return err
	}
	if err := s.put(keyNotifications, notifications); err != nil {
		return err
	}
	s.profile = profile
	s.notifications = notifications
	return nil
}

func (s *Store) put(key []byte, value interface{}) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreferences)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketPreferences)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}
