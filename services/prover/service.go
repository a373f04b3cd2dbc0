// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prover exposes proof sessions over HTTP.
//
// A Service holds the open sessions and the theorem library they cite.
// Handlers translate JSON documents (see package codec) into goals and
// tactics, run them through the session, and return the updated forest.
package prover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/session"
)

// ServiceVersion is the prover service version.
const ServiceVersion = "0.1.0"

// Library is the theorem registry served by the API.
type Library interface {
	session.Library
	Len() int
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// MaxSessions bounds the number of open sessions. Zero means 256.
	MaxSessions int

	// MaxConcurrency bounds parallel leaf expansion per session.
	MaxConcurrency int

	// Logger for service events. Nil uses slog.Default().
	Logger *slog.Logger
}

// Service owns the open proof sessions.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session

	lib        Library
	dispatcher *dispatch.Dispatcher
	cfg        ServiceConfig
	logger     *slog.Logger
}

// NewService creates a service.
//
// Inputs:
//   - lib: The theorem library. Must not be nil.
//   - d: A dispatcher reading theorems from lib.
//   - cfg: Service configuration.
//
// Outputs:
//   - *Service: The service.
func NewService(lib Library, d *dispatch.Dispatcher, cfg ServiceConfig) *Service {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:   make(map[string]*session.Session),
		lib:        lib,
		dispatcher: d,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateSession starts a session proving the request's goal.
//
// Outputs:
//   - *session.Session: The new session.
//   - error: A codec or goal error for bad documents, ErrSessionExists or
//     ErrTooManySessions.
func (s *Service) CreateSession(req CreateSessionRequest) (*session.Session, error) {
	g, err := codec.DecodeGoal(*req.Goal)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(s.dispatcher, g, session.Options{
		ID:             req.ID,
		Name:           req.Name,
		Description:    req.Description,
		Logger:         s.logger,
		MaxConcurrency: s.cfg.MaxConcurrency,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID()]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, sess.ID())
	}
	if len(s.sessions) >= s.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}
	s.sessions[sess.ID()] = sess
	return sess, nil
}

// Session returns the open session with the given ID.
func (s *Service) Session(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// CloseSession discards a session.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Register inserts a completed session's theorem into the library and
// closes the session.
//
// Outputs:
//   - registry.Theorem: The registered theorem.
//   - error: ErrSessionNotFound, session.ErrIncomplete or a registry error.
func (s *Service) Register(id string) (registry.Theorem, error) {
	sess, err := s.Session(id)
	if err != nil {
		return registry.Theorem{}, err
	}
	thm, err := sess.Theorem()
	if err != nil {
		return registry.Theorem{}, err
	}
	if err := s.lib.Insert(thm); err != nil {
		return registry.Theorem{}, err
	}
	s.logger.Info("theorem registered", slog.String("theorem", thm.ID))
	if err := s.CloseSession(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return thm, err
	}
	return thm, nil
}

// Theorems lists registered theorems sorted by ID.
func (s *Service) Theorems() []registry.Theorem {
	ids := s.lib.IDs()
	sort.Strings(ids)
	out := make([]registry.Theorem, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.lib.GetTheorem(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// Theorem returns one registered theorem.
func (s *Service) Theorem(id string) (registry.Theorem, bool) {
	return s.lib.GetTheorem(id)
}

// Check replays a proof script against the library.
func (s *Service) Check(ctx context.Context, script *codec.Script) ([]session.Report, error) {
	return session.Check(ctx, s.dispatcher, s.lib, script, s.logger)
}
