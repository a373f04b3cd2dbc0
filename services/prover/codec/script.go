// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package codec

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrEmptyScript is returned for a script without theorems.
var ErrEmptyScript = errors.New("script has no theorems")

// Script is a proof script: theorems to prove and the steps proving them.
//
// Example:
//
//	theorems:
//	  - id: and_comm
//	    goal:
//	      context:
//	        - name: h
//	          type: {and: [{pred: {name: P}}, {pred: {name: Q}}]}
//	      statement: {and: [{pred: {name: Q}}, {pred: {name: P}}]}
//	    steps:
//	      - node: "1"
//	        tactic: {kind: split_hypothesis_conjunction, hypothesis: h}
type Script struct {
	Theorems []ScriptTheorem `json:"theorems" yaml:"theorems"`
}

// ScriptTheorem is one theorem of a script.
type ScriptTheorem struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Goal        GoalDoc      `json:"goal" yaml:"goal"`
	Steps       []ScriptStep `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// ScriptStep applies a tactic to the node with the given path ID, or
// abandons that node when Abandon is set.
type ScriptStep struct {
	Node    string    `json:"node" yaml:"node"`
	Tactic  TacticDoc `json:"tactic,omitempty" yaml:"tactic,omitempty"`
	Abandon bool      `json:"abandon,omitempty" yaml:"abandon,omitempty"`
}

// ParseScript parses a YAML (or JSON) proof script.
//
// Outputs:
//   - *Script: The parsed script.
//   - error: Non-nil if the document is invalid or names no theorems.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Theorems) == 0 {
		return nil, ErrEmptyScript
	}
	seen := make(map[string]bool, len(s.Theorems))
	for i, th := range s.Theorems {
		if th.ID == "" {
			return nil, fmt.Errorf("theorem %d: %w: missing id", i, ErrMalformed)
		}
		if seen[th.ID] {
			return nil, fmt.Errorf("theorem %s: %w: duplicate id", th.ID, ErrMalformed)
		}
		seen[th.ID] = true
		for j, st := range th.Steps {
			if st.Node == "" {
				return nil, fmt.Errorf("theorem %s step %d: %w: missing node", th.ID, j, ErrMalformed)
			}
			if !st.Abandon && st.Tactic.Kind == "" {
				return nil, fmt.Errorf("theorem %s step %d: %w: missing tactic", th.ID, j, ErrMalformed)
			}
		}
	}
	return &s, nil
}

// MarshalScript renders s as YAML.
func MarshalScript(s *Script) ([]byte, error) {
	return yaml.Marshal(s)
}

// TheoremDoc is the stored form of a registry theorem.
type TheoremDoc struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Goal        GoalDoc `json:"goal" yaml:"goal"`
}
