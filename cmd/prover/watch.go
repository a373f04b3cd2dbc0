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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
)

const watchDebounce = 150 * time.Millisecond

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var trees bool
	cmd := &cobra.Command{
		Use:   "watch <script>",
		Short: "Re-check a proof script every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, opts, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.WithoutCancel(ctx)) }()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r := newRenderer(out, useColor(out, opts.noColor), trees)

			// Each run starts from an empty registry so that edited
			// theorems do not collide with their previous versions.
			recheck := func() {
				store := registry.NewStore()
				d := dispatch.New(store, a.cfg.DispatchOptions(a.logger, nil))
				if _, err := checkFile(ctx, d, store, path, r, a.logger); err != nil {
					fmt.Fprintln(out, r.style.Error.Render(err.Error()))
				}
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// Editors often save by renaming over the file, which drops a
			// watch on the file itself.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
			}

			recheck()
			a.logger.Info("watching script", slog.String("path", path))
			return watchLoop(ctx, watcher, path, watchDebounce, recheck, a.logger)
		},
	}
	cmd.Flags().BoolVar(&trees, "tree", false, "Print the proof forest of every theorem")
	return cmd
}

// watchLoop calls onChange once per burst of events touching path.
//
// Description:
//
//	Events for other files in the directory are ignored. Events arriving
//	within debounce of each other are coalesced into one call.
//
// Outputs:
//   - error: Always nil once ctx is cancelled or the watcher closes.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, onChange func(), logger *slog.Logger) error {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("script changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("script watcher error", slog.String("error", err.Error()))

		case <-ctx.Done():
			return nil
		}
	}
}
