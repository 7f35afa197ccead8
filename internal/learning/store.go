// Package learning persists user-confirmed merchant-name corrections and
// feeds them back into normalization.
package learning

import (
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"go.etcd.io/bbolt"
)

const correctionsBucket = "corrections"

// MaxRawLength is the longest raw OCR string worth learning from. Anything
// longer is run-on OCR garbage, not a merchant name.
const MaxRawLength = 100

// Store is a durable raw→corrected merchant mapping. bbolt serializes
// writers, so concurrent correction events cannot drop each other.
type Store struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// Open loads the correction store at path, creating it when missing. An
// unreadable file is moved aside and a fresh store started in its place;
// prior corrections are kept in the renamed copy for manual recovery.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openBolt(path)
	if err != nil {
		backup := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		logger.Warn("learning store unreadable, starting fresh",
			"path", path, "backup", backup, "error", err)
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return nil, fmt.Errorf("open learning store: %w", err)
		}
		if db, err = openBolt(path); err != nil {
			return nil, fmt.Errorf("recreate learning store: %w", err)
		}
	}

	return &Store{db: db, logger: logger}, nil
}

func openBolt(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(correctionsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Lookup returns the learned correction for a raw OCR string, if any.
func (s *Store) Lookup(raw string) (string, bool) {
	var (
		corrected string
		found     bool
	)
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(correctionsBucket)).Get([]byte(raw)); v != nil {
			corrected, found = string(v), true
		}
		return nil
	})
	return corrected, found
}

// Record stores a user-confirmed correction. Events where the user kept the
// OCR value unchanged, or where the raw string is implausibly long, are
// ignored without error. A later correction for the same raw string
// overwrites the earlier one.
func (s *Store) Record(raw, corrected string) error {
	if raw == corrected || utf8.RuneCountInString(raw) >= MaxRawLength {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(correctionsBucket)).Put([]byte(raw), []byte(corrected))
	})
	if err != nil {
		return fmt.Errorf("record correction: %w", err)
	}
	s.logger.Info("merchant correction learned", "raw", raw, "corrected", corrected)
	return nil
}

// All returns a copy of the correction dictionary.
func (s *Store) All() (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(correctionsBucket)).ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
