// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prover

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
)

// =============================================================================
// Validation
// =============================================================================

// requestValidate checks request bodies after binding.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	mustRegisterValidation(requestValidate, "nodepath", validateNodePath)
}

// mustRegisterValidation panics if a custom tag cannot be registered.
func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validateNodePath accepts branch paths such as "1", "1.2" or "3.1.4".
func validateNodePath(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && digits > 0:
			digits = 0
		default:
			return false
		}
	}
	return digits > 0
}

// =============================================================================
// Requests
// =============================================================================

// CreateSessionRequest starts a proof session.
type CreateSessionRequest struct {
	// ID is the theorem ID; generated when empty.
	ID          string         `json:"id,omitempty" validate:"omitempty,max=128"`
	Name        string         `json:"name,omitempty" validate:"max=256"`
	Description string         `json:"description,omitempty" validate:"max=4096"`
	Goal        *codec.GoalDoc `json:"goal" validate:"required"`
}

// ApplyRequest applies one tactic to one node.
type ApplyRequest struct {
	Node   string           `json:"node" validate:"required,nodepath"`
	Tactic *codec.TacticDoc `json:"tactic" validate:"required"`
}

// ExpandRequest applies one tactic to every open leaf.
type ExpandRequest struct {
	Tactic *codec.TacticDoc `json:"tactic" validate:"required"`
}

// AbandonRequest gives up on a leaf.
type AbandonRequest struct {
	Node string `json:"node" validate:"required,nodepath"`
}

// =============================================================================
// Responses
// =============================================================================

// SessionResponse describes a session and its proof tree.
type SessionResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Root       string          `json:"root"`
	Status     string          `json:"status"`
	OpenLeaves []string        `json:"open_leaves"`
	CreatedAt  time.Time       `json:"created_at"`
	Tree       json.RawMessage `json:"tree"`
}

// StepResponse describes the outcome of applying a tactic to one node.
type StepResponse struct {
	Node          string   `json:"node"`
	Result        string   `json:"result"`
	Outcome       string   `json:"outcome,omitempty"`
	Justification string   `json:"justification,omitempty"`
	Message       string   `json:"message,omitempty"`
	Children      []string `json:"children,omitempty"`
	Goals         []string `json:"goals,omitempty"`
}

// ApplyResponse is returned by the apply and expand endpoints.
type ApplyResponse struct {
	Steps  []StepResponse `json:"steps"`
	Status string         `json:"status"`
}

// TheoremSummary is one entry of the theorem listing.
type TheoremSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Statement string `json:"statement"`
}

// TheoremListResponse lists registered theorems.
type TheoremListResponse struct {
	Theorems []TheoremSummary `json:"theorems"`
	Count    int              `json:"count"`
}

// CheckReport is the outcome of one theorem of a checked script.
type CheckReport struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Registered bool   `json:"registered"`
	Error      string `json:"error,omitempty"`
}

// CheckResponse is returned by the script check endpoint.
type CheckResponse struct {
	Reports []CheckReport `json:"reports"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
	Theorems int    `json:"theorems"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}
