package crawler

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocolly/colly/v2/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	visitedBucket = []byte("visited")
	cookiesBucket = []byte("cookies")
)

// BoltStorage keeps the static engine's visited requests and cookies in a
// bbolt file.
type BoltStorage struct {
	Path string
	db   *bolt.DB
	mu   sync.RWMutex
}

// Init implements storage.Storage interface
func (s *BoltStorage) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	db, err := bolt.Open(s.Path, 0600, nil)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{visitedBucket, cookiesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("create buckets: %w", err)
	}

	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
	return nil
}

// Visited implements storage.Storage interface
func (s *BoltStorage) Visited(requestID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(visitedBucket).Put(requestKey(requestID), []byte{1})
	})
}

// IsVisited implements storage.Storage interface
func (s *BoltStorage) IsVisited(requestID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visited bool
	err := s.db.View(func(tx *bolt.Tx) error {
		visited = tx.Bucket(visitedBucket).Get(requestKey(requestID)) != nil
		return nil
	})
	return visited, err
}

// Cookies implements storage.Storage interface
func (s *BoltStorage) Cookies(u *url.URL) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cookies string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cookiesBucket).Get([]byte(u.Host)); v != nil {
			cookies = string(v)
		}
		return nil
	})
	return cookies
}

// SetCookies implements storage.Storage interface
func (s *BoltStorage) SetCookies(u *url.URL, cookies string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cookiesBucket).Put([]byte(u.Host), []byte(cookies))
	})
}

// VisitedCount returns how many requests are recorded as visited.
func (s *BoltStorage) VisitedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(visitedBucket).Stats().KeyN
		return nil
	})
	return n
}

// Clear removes all data from storage
func (s *BoltStorage) Clear() error {
	return s.reset(visitedBucket, cookiesBucket)
}

// ClearVisited forgets visited requests and keeps cookies.
func (s *BoltStorage) ClearVisited() error {
	return s.reset(visitedBucket)
}

func (s *BoltStorage) reset(buckets ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func requestKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

var _ storage.Storage = (*BoltStorage)(nil)
