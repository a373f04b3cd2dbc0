// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session drives one proof attempt: a forest rooted at a theorem's
// goal and a dispatcher that grows it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
)

var (
	// ErrNilDispatcher is returned when a session is created without a
	// dispatcher.
	ErrNilDispatcher = errors.New("dispatcher must not be nil")

	// ErrIncomplete is returned when packaging an unproved theorem.
	ErrIncomplete = errors.New("proof is not complete")

	// ErrStepFailed is returned when a replayed step does not apply.
	ErrStepFailed = errors.New("proof step failed")
)

// Options configures a session.
type Options struct {
	// ID is the theorem ID. Empty generates a UUID.
	ID          string
	Name        string
	Description string

	// Logger for session events. Nil uses slog.Default().
	Logger *slog.Logger

	// MaxConcurrency bounds parallel leaf expansion. Zero means 4.
	MaxConcurrency int

	// MeterProvider receives session metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider
}

// Step is the outcome of applying a tactic to one node.
type Step struct {
	Node   string
	Result tactic.Result

	// Children holds the committed child IDs; empty when the result was
	// NoChange or Error.
	Children []string
}

// Applied reports whether the step committed new nodes.
func (s Step) Applied() bool {
	return len(s.Children) > 0
}

// Session owns the forest of one proof attempt.
//
// Thread Safety: Safe for concurrent use. Applications are serialized so
// that commits happen in a deterministic order; the forest itself may be
// read concurrently.
type Session struct {
	mu sync.Mutex

	id          string
	name        string
	description string
	root        string
	createdAt   time.Time

	forest     *forest.Forest
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	limit      int
	meters     sessionMetrics
	completed  bool
}

// New starts a session proving g.
//
// Inputs:
//   - d: The dispatcher used for every application. Must not be nil.
//   - g: The statement to prove. Must satisfy goal.Validate.
//   - opts: Session options.
//
// Outputs:
//   - *Session: The new session with a single pending root.
//   - error: ErrNilDispatcher or the goal validation failure.
func New(d *dispatch.Dispatcher, g goal.Goal, opts Options) (*Session, error) {
	if d == nil {
		return nil, ErrNilDispatcher
	}
	f := forest.New()
	root, err := f.AddRoot(g)
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = 4
	}

	return &Session{
		id:          id,
		name:        opts.Name,
		description: opts.Description,
		root:        root,
		createdAt:   time.Now(),
		forest:      f,
		dispatcher:  d,
		logger:      logger.With(slog.String("session", id)),
		limit:       limit,
		meters:      newSessionMetrics(opts.MeterProvider),
	}, nil
}

// ID returns the theorem ID the session proves.
func (s *Session) ID() string { return s.id }

// Name returns the theorem's display name.
func (s *Session) Name() string { return s.name }

// Root returns the root node ID.
func (s *Session) Root() string { return s.root }

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Forest returns the session's forest for inspection.
func (s *Session) Forest() *forest.Forest { return s.forest }

// Status returns the root's derived status.
func (s *Session) Status() forest.Status {
	st, _ := s.forest.Status(s.root)
	return st
}

// Apply runs t on the goal at nodeID and commits the result.
//
// Description:
//
//	SingleGoal and MultiGoal results become one new application group
//	below the node. NoChange and Error results leave the forest as it was
//	and are returned for the caller to inspect.
//
// Inputs:
//   - ctx: Context for cancellation and tracing.
//   - nodeID: The branch path of the node to work on.
//   - t: The tactic to apply.
//
// Outputs:
//   - Step: The dispatcher result and any committed children.
//   - error: Non-nil if the node is unknown or closed.
func (s *Session) Apply(ctx context.Context, nodeID string, t tactic.Tactic) (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.workable(nodeID)
	if err != nil {
		return Step{Node: nodeID}, err
	}

	res := s.dispatcher.Apply(ctx, g, t)
	return s.commit(ctx, nodeID, t, res)
}

// workable returns the goal at nodeID if tactics may still be applied there.
func (s *Session) workable(nodeID string) (goal.Goal, error) {
	n, err := s.forest.Node(nodeID)
	if err != nil {
		return goal.Goal{}, err
	}
	if n.IsLeaf() && n.Status.IsTerminal() {
		return goal.Goal{}, fmt.Errorf("%w: %s is %s", forest.ErrClosedNode, nodeID, n.Status)
	}
	return n.Goal, nil
}

func (s *Session) commit(ctx context.Context, nodeID string, t tactic.Tactic, res tactic.Result) (Step, error) {
	step := Step{Node: nodeID, Result: res}
	if !res.Succeeded() {
		s.meters.recordStep(ctx, string(res.Kind), false)
		s.logger.Debug("tactic not applied",
			slog.String("node", nodeID),
			slog.String("tactic", describe(t)),
			slog.String("result", string(res.Kind)),
			slog.String("message", res.Message))
		return step, nil
	}

	children, err := s.forest.Commit(nodeID, t, res)
	if err != nil {
		return step, err
	}
	step.Children = children
	s.meters.recordStep(ctx, string(res.Kind), true)

	status := s.Status()
	if status == forest.StatusComplete && !s.completed {
		s.completed = true
		s.meters.recordComplete(ctx)
	}
	s.logger.Info("tactic applied",
		slog.String("node", nodeID),
		slog.String("tactic", describe(t)),
		slog.Int("children", len(children)),
		slog.String("root_status", status.String()))
	return step, nil
}

// Abandon gives up on the leaf nodeID.
func (s *Session) Abandon(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.forest.Abandon(nodeID); err != nil {
		return err
	}
	s.logger.Info("node abandoned", slog.String("node", nodeID))
	return nil
}

// ExpandLeaves applies t to every open leaf of the session.
//
// Description:
//
//	Each leaf is evaluated concurrently on its own goal copy, bounded by
//	Options.MaxConcurrency. Successful results are then committed one at a
//	time in leaf order, so node IDs do not depend on scheduling.
//
// Inputs:
//   - ctx: Context for cancellation. Cancelling stops pending evaluations.
//   - t: The tactic to apply everywhere.
//
// Outputs:
//   - []Step: One step per open leaf, in leaf order.
//   - error: The context error, or a commit failure.
func (s *Session) ExpandLeaves(ctx context.Context, t tactic.Tactic) ([]Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaves := s.forest.OpenLeaves(s.root)
	if len(leaves) == 0 {
		return nil, nil
	}

	goals := make([]goal.Goal, len(leaves))
	for i, id := range leaves {
		g, err := s.forest.Goal(id)
		if err != nil {
			return nil, err
		}
		goals[i] = g
	}

	s.meters.recordExpansion(ctx, len(leaves))
	results := make([]tactic.Result, len(leaves))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.limit)
	for i := range leaves {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = s.dispatcher.Apply(egCtx, goals[i], t)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("expand leaves: %w", err)
	}

	steps := make([]Step, len(leaves))
	for i, id := range leaves {
		step, err := s.commit(ctx, id, t, results[i])
		if err != nil {
			return steps[:i], err
		}
		steps[i] = step
	}
	return steps, nil
}

// Theorem packages a completed proof for the registry.
//
// Outputs:
//   - registry.Theorem: The root goal with the session's forest as proof.
//   - error: ErrIncomplete if the root is not complete.
func (s *Session) Theorem() (registry.Theorem, error) {
	if st := s.Status(); st != forest.StatusComplete {
		return registry.Theorem{}, fmt.Errorf("%w: %s is %s", ErrIncomplete, s.id, st)
	}
	g, err := s.forest.Goal(s.root)
	if err != nil {
		return registry.Theorem{}, err
	}
	return registry.Theorem{
		ID:          s.id,
		Name:        s.name,
		Description: s.description,
		Goal:        g,
		Proof:       s.forest,
	}, nil
}

func describe(t tactic.Tactic) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
