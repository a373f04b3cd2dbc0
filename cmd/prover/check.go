// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/session"
)

// errProofsFailed is returned when at least one theorem was not proved.
var errProofsFailed = errors.New("some proofs failed")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var persist, trees bool
	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Replay a proof script and register the proved theorems",
		Long: `check replays every theorem of a YAML proof script in order. Each proved
theorem is added to the registry before the next one is replayed, so later
proofs may cite earlier results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, opts, cmd.ErrOrStderr(), persist)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.WithoutCancel(ctx)) }()

			out := cmd.OutOrStdout()
			r := newRenderer(out, useColor(out, opts.noColor), trees)
			sum, err := checkFile(ctx, a.dispatcher, a.lib, args[0], r, a.logger)
			if err != nil {
				return err
			}
			if !sum.OK() {
				return errProofsFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "Register proved theorems in the configured BadgerDB registry")
	cmd.Flags().BoolVar(&trees, "tree", false, "Print the proof forest of every theorem")
	return cmd
}

// checkFile parses the script at path, replays it into lib and renders the
// reports.
func checkFile(ctx context.Context, d *dispatch.Dispatcher, lib session.Library, path string, r *renderer, logger *slog.Logger) (checkSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkSummary{}, fmt.Errorf("read script: %w", err)
	}
	script, err := codec.ParseScript(data)
	if err != nil {
		return checkSummary{}, fmt.Errorf("%s: %w", path, err)
	}
	reports, err := session.Check(ctx, d, lib, script, logger)
	if err != nil {
		return checkSummary{}, err
	}
	return r.reports(path, script, reports), nil
}
