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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/session"
)

// Palette, from brightest to darkest.
var (
	colorTealBright  = lipgloss.Color("#2CD7C7")
	colorTealPrimary = lipgloss.Color("#20B9B4")
	colorTealDeep    = lipgloss.Color("#16858E")
	colorSlate       = lipgloss.Color("#2C4A54")
	colorWarning     = lipgloss.Color("#F4D03F")
	colorError       = lipgloss.Color("#E74C3C")
)

// styles holds the lipgloss styles of the report output.
type styles struct {
	Title   lipgloss.Style
	Name    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Tree    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			Title: plain, Name: plain, Muted: plain,
			Success: plain, Warning: plain, Error: plain,
			Tree: plain.PaddingLeft(2),
		}
	}
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorTealBright),
		Name:    lipgloss.NewStyle().Bold(true).Foreground(colorTealPrimary),
		Muted:   lipgloss.NewStyle().Foreground(colorSlate),
		Success: lipgloss.NewStyle().Foreground(colorTealBright),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Tree: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorTealDeep).
			PaddingLeft(1),
	}
}

// useColor reports whether w is a terminal that should receive colour.
func useColor(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderer prints check reports.
type renderer struct {
	w     io.Writer
	style styles
	trees bool
}

func newRenderer(w io.Writer, color, trees bool) *renderer {
	return &renderer{w: w, style: newStyles(color), trees: trees}
}

// checkSummary counts the outcomes of one check run.
type checkSummary struct {
	Total, Proved, Failed int
}

// OK reports whether every theorem was proved and registered.
func (s checkSummary) OK() bool {
	return s.Failed == 0
}

// reports prints one line per theorem followed by a summary line.
func (r *renderer) reports(path string, script *codec.Script, reps []session.Report) checkSummary {
	sum := checkSummary{Total: len(reps)}
	fmt.Fprintln(r.w, r.style.Title.Render("Checking "+path))

	for i, rep := range reps {
		id := script.Theorems[i].ID
		icon, status := r.statusCell(rep)
		line := fmt.Sprintf("%s %s  %s", icon, r.style.Name.Render(id), status)

		switch {
		case rep.Err != nil:
			sum.Failed++
			line += "  " + r.style.Error.Render(rep.Err.Error())
		case rep.Registered:
			sum.Proved++
			line += "  " + r.style.Muted.Render("registered")
		default:
			sum.Failed++
		}
		fmt.Fprintln(r.w, line)

		if r.trees && rep.Session != nil {
			fmt.Fprintln(r.w, r.style.Tree.Render(strings.TrimRight(rep.Session.Forest().Format(), "\n")))
		}
	}

	summary := fmt.Sprintf("%d theorems, %d proved, %d failed", sum.Total, sum.Proved, sum.Failed)
	if sum.OK() {
		fmt.Fprintln(r.w, r.style.Success.Render(summary))
	} else {
		fmt.Fprintln(r.w, r.style.Error.Render(summary))
	}
	return sum
}

func (r *renderer) statusCell(rep session.Report) (string, string) {
	if rep.Session == nil {
		return r.style.Error.Render("✗"), r.style.Error.Render("invalid")
	}
	st := rep.Status
	icon := st.Icon()
	if strings.TrimSpace(icon) == "" {
		icon = "·"
	}
	switch st {
	case forest.StatusComplete:
		return r.style.Success.Render(icon), r.style.Success.Render(st.String())
	case forest.StatusAbandoned, forest.StatusDisproven:
		return r.style.Error.Render(icon), r.style.Error.Render(st.String())
	default:
		return r.style.Warning.Render(icon), r.style.Warning.Render(st.String())
	}
}
