// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
)

// Library is a theorem registry that can also accept new theorems.
type Library interface {
	dispatch.TheoremSource
	Insert(t registry.Theorem) error
}

// Replay builds a session for th and runs its steps in order.
//
// Description:
//
//	A step that names an abandoned node abandons it. Every other step must
//	commit at least one child; a NoChange or Error result stops the replay
//	with ErrStepFailed. The session is returned even on failure so the
//	partial forest can be shown.
//
// Inputs:
//   - ctx: Context for cancellation and tracing.
//   - d: The dispatcher.
//   - th: The script theorem.
//   - opts: Session options. ID, Name and Description are taken from th.
//
// Outputs:
//   - *Session: The session, nil only if the goal is invalid.
//   - error: Non-nil if decoding or any step fails.
func Replay(ctx context.Context, d *dispatch.Dispatcher, th codec.ScriptTheorem, opts Options) (*Session, error) {
	g, err := codec.DecodeGoal(th.Goal)
	if err != nil {
		return nil, fmt.Errorf("theorem %s: %w", th.ID, err)
	}
	opts.ID, opts.Name, opts.Description = th.ID, th.Name, th.Description
	s, err := New(d, g, opts)
	if err != nil {
		return nil, fmt.Errorf("theorem %s: %w", th.ID, err)
	}

	for i, st := range th.Steps {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		if st.Abandon {
			if err := s.Abandon(st.Node); err != nil {
				return s, fmt.Errorf("theorem %s step %d: %w", th.ID, i+1, err)
			}
			continue
		}
		t, err := codec.DecodeTactic(st.Tactic)
		if err != nil {
			return s, fmt.Errorf("theorem %s step %d: %w", th.ID, i+1, err)
		}
		step, err := s.Apply(ctx, st.Node, t)
		if err != nil {
			return s, fmt.Errorf("theorem %s step %d: %w", th.ID, i+1, err)
		}
		if !step.Applied() {
			return s, fmt.Errorf("theorem %s step %d: %w: %s at %s: %s",
				th.ID, i+1, ErrStepFailed, t, st.Node, step.Result)
		}
	}
	return s, nil
}

// Report is the outcome of checking one script theorem.
type Report struct {
	Session *Session
	Status  forest.Status

	// Registered is true when the proved theorem was added to the library.
	Registered bool
	Err        error
}

// Check replays every theorem of a script in order.
//
// Description:
//
//	Each completed theorem is inserted into lib before the next theorem is
//	replayed, so later proofs may rewrite with earlier results. A failing
//	theorem is reported and checking continues.
//
// Inputs:
//   - ctx: Context for cancellation.
//   - d: A dispatcher reading theorems from lib.
//   - lib: The theorem library receiving results.
//   - script: The parsed script.
//   - logger: Logger for check progress. Nil uses slog.Default().
//
// Outputs:
//   - []Report: One report per theorem, in script order.
//   - error: The context error if checking was cancelled.
func Check(ctx context.Context, d *dispatch.Dispatcher, lib Library, script *codec.Script, logger *slog.Logger) ([]Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reports := make([]Report, 0, len(script.Theorems))
	for _, th := range script.Theorems {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		s, err := Replay(ctx, d, th, Options{Logger: logger})
		rep := Report{Session: s, Err: err}
		if s != nil {
			rep.Status = s.Status()
		}
		if err == nil && rep.Status == forest.StatusComplete {
			thm, terr := s.Theorem()
			if terr == nil {
				terr = lib.Insert(thm)
			}
			rep.Err = terr
			rep.Registered = terr == nil
		}

		logger.Info("theorem checked",
			slog.String("theorem", th.ID),
			slog.String("status", rep.Status.String()),
			slog.Bool("registered", rep.Registered))
		reports = append(reports, rep)
	}
	return reports, nil
}
