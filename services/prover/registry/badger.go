// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
)

const theoremKeyPrefix = "theorem/"

// BadgerConfig holds configuration for the persistent registry.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns production defaults for the given path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns configuration for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// BadgerStore is a theorem registry persisted in BadgerDB.
//
// Description:
//
//	Theorems are cached in an in-memory Store and written through to
//	BadgerDB as codec.TheoremDoc JSON under "theorem/<id>". Opening the
//	store loads every persisted theorem. Proof forests are not persisted,
//	so loaded theorems have a nil Proof.
//
// Thread Safety: Safe for concurrent use.
type BadgerStore struct {
	db     *badger.DB
	mem    *Store
	logger *slog.Logger
}

// OpenBadger opens (or creates) a persistent registry.
//
// Inputs:
//   - cfg: Database configuration. Path is required unless InMemory is true.
//
// Outputs:
//   - *BadgerStore: The opened store. Caller must call Close() when done.
//   - error: Non-nil if the database cannot be opened or a stored theorem
//     cannot be decoded.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent registry")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create registry directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.Default()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}

	s := &BadgerStore{db: db, mem: NewStore(), logger: logger}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BadgerStore) load() error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(theoremKeyPrefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var doc codec.TheoremDoc
				if err := json.Unmarshal(val, &doc); err != nil {
					return fmt.Errorf("decode theorem %s: %w", item.Key(), err)
				}
				g, err := codec.DecodeGoal(doc.Goal)
				if err != nil {
					return fmt.Errorf("decode theorem %s: %w", doc.ID, err)
				}
				return s.mem.Insert(Theorem{ID: doc.ID, Name: doc.Name, Description: doc.Description, Goal: g})
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTheorem returns a copy of the theorem with the given ID.
func (s *BadgerStore) GetTheorem(id string) (Theorem, bool) {
	return s.mem.GetTheorem(id)
}

// IDs returns the registered IDs in sorted order.
func (s *BadgerStore) IDs() []string {
	return s.mem.IDs()
}

// Len returns the number of registered theorems.
func (s *BadgerStore) Len() int {
	return s.mem.Len()
}

// Insert registers t and writes it through to disk.
//
// Outputs:
//   - error: ErrInvalidTheorem, ErrTheoremExists, or a storage failure. On
//     storage failure the theorem is not registered.
func (s *BadgerStore) Insert(t Theorem) error {
	if err := s.mem.Insert(t); err != nil {
		return err
	}

	doc := codec.TheoremDoc{ID: t.ID, Name: t.Name, Description: t.Description, Goal: codec.EncodeGoal(t.Goal)}
	data, err := json.Marshal(doc)
	if err == nil {
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(theoremKeyPrefix+t.ID), data)
		})
	}
	if err != nil {
		s.mem.remove(t.ID)
		return fmt.Errorf("persist theorem %s: %w", t.ID, err)
	}

	s.logger.Debug("theorem persisted", slog.String("theorem_id", t.ID), slog.Int("bytes", len(data)))
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
