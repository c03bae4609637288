package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"codechunk/internal/domain"
)

var (
	bucketEntries = []byte("entries")
	bucketBlobs   = []byte("blobs")
	bucketStats   = []byte("stats")
)

// BoltStore persists Cache Entries: parse results in "entries", full source
// texts in "blobs", schema information in "stats".
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketBlobs, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type entryMeta struct {
	Language  string              `json:"language"`
	Result    *domain.ParseResult `json:"result"`
	UpdatedAt int64               `json:"updated_at"`
}

func putEntry(tx *bbolt.Tx, entry *domain.CacheEntry) error {
	meta := entryMeta{
		Language:  entry.Language,
		Result:    entry.Result,
		UpdatedAt: entry.UpdatedAt.Unix(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := tx.Bucket(bucketEntries).Put([]byte(entry.ID), data); err != nil {
		return err
	}
	return tx.Bucket(bucketBlobs).Put([]byte(entry.ID), []byte(entry.Text))
}

func (s *BoltStore) Put(entry *domain.CacheEntry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putEntry(tx, entry)
	})
}

func (s *BoltStore) Get(id string) (*domain.CacheEntry, error) {
	var entry *domain.CacheEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", domain.ErrCacheMiss, id)
		}
		var meta entryMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("decode entry %s: %w", id, err)
		}
		var text string
		if blobs := tx.Bucket(bucketBlobs); blobs != nil {
			text = string(blobs.Get([]byte(id)))
		}
		entry = &domain.CacheEntry{
			ID:        id,
			Language:  meta.Language,
			Text:      text,
			Result:    meta.Result,
			UpdatedAt: time.Unix(meta.UpdatedAt, 0),
		}
		return nil
	})
	return entry, err
}

func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEntries).Delete([]byte(id)); err != nil {
			return err
		}
		if blobs := tx.Bucket(bucketBlobs); blobs != nil {
			return blobs.Delete([]byte(id))
		}
		return nil
	})
}

func (s *BoltStore) IDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
