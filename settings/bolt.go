package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("settings")

type BoltConfig struct {
	// Path of the database file. Missing directories are created.
	Path string

	// Timeout for acquiring the file lock. Defaults to 1 second.
	Timeout time.Duration
}

type boltStore struct {
	db *bbolt.DB
}

// NewBolt opens or creates a bbolt database at config.Path.
func NewBolt(config BoltConfig) (Store, error) {
	if len(config.Path) == 0 {
		return nil, fmt.Errorf("no path provided")
	}

	if config.Timeout <= 0 {
		config.Timeout = time.Second
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", config.Path, err)
	}

	db, err := bbolt.Open(config.Path, 0600, &bbolt.Options{
		Timeout: config.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", config.Path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &boltStore{
		db: db,
	}, nil
}

func (s *boltStore) Get(key string) (string, bool, error) {
	var value string
	var ok bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}

		// The slice is only valid during the transaction.
		value = string(v)
		ok = true

		return nil
	})
	if err != nil {
		return "", false, s.wrap(err)
	}

	return value, ok, nil
}

func (s *boltStore) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

func (s *boltStore) SetMany(values map[string]string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)

		for k, v := range values {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}

		return nil
	})

	return s.wrap(err)
}

func (s *boltStore) Delete(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})

	return s.wrap(err)
}

func (s *boltStore) Keys() ([]string, error) {
	keys := []string{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, s.wrap(err)
	}

	return keys, nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

func (s *boltStore) wrap(err error) error {
	if err == bbolt.ErrDatabaseNotOpen {
		return ErrClosed
	}

	return err
}
