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
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/session"
)

// maxScriptBytes bounds the body of a script check request.
const maxScriptBytes = 1 << 20

// Handlers contains the HTTP handlers for the prover.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleCreateSession handles POST /v1/prover/sessions.
//
// Description:
//
//	Starts a proof session for the goal document in the request.
//
// Request Body:
//
//	CreateSessionRequest
//
// Response:
//
//	201 Created: SessionResponse
//	400 Bad Request: Invalid body or goal document
//	409 Conflict: Session ID already in use
func (h *Handlers) HandleCreateSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateSession")

	var req CreateSessionRequest
	if !bindAndValidate(c, logger, &req) {
		return
	}

	sess, err := h.svc.CreateSession(req)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	logger.Info("Session created", "session", sess.ID())
	resp, err := sessionResponse(sess)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// HandleGetSession handles GET /v1/prover/sessions/:id.
//
// Response:
//
//	200 OK: SessionResponse
//	404 Not Found: Unknown session
func (h *Handlers) HandleGetSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetSession")

	sess, err := h.svc.Session(c.Param("id"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	resp, err := sessionResponse(sess)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDeleteSession handles DELETE /v1/prover/sessions/:id.
func (h *Handlers) HandleDeleteSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteSession")

	if err := h.svc.CloseSession(c.Param("id")); err != nil {
		writeError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleApply handles POST /v1/prover/sessions/:id/apply.
//
// Description:
//
//	Applies one tactic to one node. A tactic that does not apply is not an
//	HTTP error: the response reports the no_change or error result and the
//	forest is left unchanged.
//
// Request Body:
//
//	ApplyRequest
//
// Response:
//
//	200 OK: ApplyResponse
//	400 Bad Request: Invalid body or tactic document
//	404 Not Found: Unknown session or node
//	422 Unprocessable Entity: Node is closed
func (h *Handlers) HandleApply(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleApply")

	var req ApplyRequest
	if !bindAndValidate(c, logger, &req) {
		return
	}
	sess, err := h.svc.Session(c.Param("id"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	t, err := codec.DecodeTactic(*req.Tactic)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	step, err := sess.Apply(c.Request.Context(), req.Node, t)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	logger.Info("Tactic applied",
		"session", sess.ID(),
		"node", req.Node,
		"tactic", t.Kind(),
		"result", step.Result.Kind)
	c.JSON(http.StatusOK, ApplyResponse{
		Steps:  []StepResponse{stepResponse(step)},
		Status: sess.Status().String(),
	})
}

// HandleExpand handles POST /v1/prover/sessions/:id/expand.
//
// Description:
//
//	Applies one tactic to every open leaf of the session.
//
// Response:
//
//	200 OK: ApplyResponse with one step per open leaf
func (h *Handlers) HandleExpand(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleExpand")

	var req ExpandRequest
	if !bindAndValidate(c, logger, &req) {
		return
	}
	sess, err := h.svc.Session(c.Param("id"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	t, err := codec.DecodeTactic(*req.Tactic)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	steps, err := sess.ExpandLeaves(c.Request.Context(), t)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	resp := ApplyResponse{Steps: make([]StepResponse, 0, len(steps)), Status: sess.Status().String()}
	for _, st := range steps {
		resp.Steps = append(resp.Steps, stepResponse(st))
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAbandon handles POST /v1/prover/sessions/:id/abandon.
func (h *Handlers) HandleAbandon(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAbandon")

	var req AbandonRequest
	if !bindAndValidate(c, logger, &req) {
		return
	}
	sess, err := h.svc.Session(c.Param("id"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	if err := sess.Abandon(req.Node); err != nil {
		writeError(c, logger, err)
		return
	}
	resp, err := sessionResponse(sess)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleRegister handles POST /v1/prover/sessions/:id/register.
//
// Description:
//
//	Adds the session's proved statement to the theorem library and closes
//	the session.
//
// Response:
//
//	201 Created: TheoremSummary
//	409 Conflict: Theorem ID already registered
//	422 Unprocessable Entity: Proof is not complete
func (h *Handlers) HandleRegister(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRegister")

	thm, err := h.svc.Register(c.Param("id"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, theoremSummary(thm))
}

// HandleListTheorems handles GET /v1/prover/theorems.
func (h *Handlers) HandleListTheorems(c *gin.Context) {
	getOrCreateRequestID(c)

	theorems := h.svc.Theorems()
	resp := TheoremListResponse{Theorems: make([]TheoremSummary, 0, len(theorems)), Count: len(theorems)}
	for _, t := range theorems {
		resp.Theorems = append(resp.Theorems, theoremSummary(t))
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGetTheorem handles GET /v1/prover/theorems/:id.
//
// Response:
//
//	200 OK: codec.TheoremDoc
//	404 Not Found: Unknown theorem
func (h *Handlers) HandleGetTheorem(c *gin.Context) {
	getOrCreateRequestID(c)

	t, ok := h.svc.Theorem(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "theorem not found",
			Code:  "THEOREM_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, codec.TheoremDoc{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Goal:        codec.EncodeGoal(t.Goal),
	})
}

// HandleCheckScript handles POST /v1/prover/scripts/check.
//
// Description:
//
//	Replays a YAML or JSON proof script. Proved theorems are registered in
//	script order.
//
// Request Body:
//
//	codec.Script document
//
// Response:
//
//	200 OK: CheckResponse
//	400 Bad Request: Unparseable script
//	413 Request Entity Too Large: Script over 1 MiB
func (h *Handlers) HandleCheckScript(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCheckScript")

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxScriptBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "script too large",
				Code:  "SCRIPT_TOO_LARGE",
			})
			return
		}
		writeError(c, logger, err)
		return
	}
	script, err := codec.ParseScript(data)
	if err != nil {
		logger.Warn("Invalid script", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SCRIPT",
		})
		return
	}

	reports, err := h.svc.Check(c.Request.Context(), script)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	resp := CheckResponse{Reports: make([]CheckReport, 0, len(reports))}
	for i, r := range reports {
		cr := CheckReport{ID: script.Theorems[i].ID, Status: r.Status.String(), Registered: r.Registered}
		if r.Err != nil {
			cr.Error = r.Err.Error()
		}
		resp.Reports = append(resp.Reports, cr)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/prover/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  ServiceVersion,
		Sessions: h.svc.SessionCount(),
		Theorems: h.svc.lib.Len(),
	})
}

// =============================================================================
// Helpers
// =============================================================================

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

// bindAndValidate decodes the JSON body into req and runs the request
// validator. It writes the 400 response itself and reports false on failure.
func bindAndValidate(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return false
	}
	if err := requestValidate.Struct(req); err != nil {
		logger.Warn("Request validation failed", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
		return false
	}
	return true
}

// writeError maps service and domain errors to HTTP responses.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, codec.ErrMalformed), errors.Is(err, codec.ErrUnknownTag),
		errors.Is(err, goal.ErrUnboundIdentifier), errors.Is(err, goal.ErrDuplicateName),
		errors.Is(err, goal.ErrEmptyStatement), errors.Is(err, registry.ErrInvalidTheorem):
		status, code = http.StatusBadRequest, "INVALID_DOCUMENT"
	case errors.Is(err, ErrSessionNotFound):
		status, code = http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, forest.ErrNodeNotFound):
		status, code = http.StatusNotFound, "NODE_NOT_FOUND"
	case errors.Is(err, ErrSessionExists):
		status, code = http.StatusConflict, "SESSION_EXISTS"
	case errors.Is(err, registry.ErrTheoremExists):
		status, code = http.StatusConflict, "THEOREM_EXISTS"
	case errors.Is(err, ErrTooManySessions):
		status, code = http.StatusServiceUnavailable, "SESSION_LIMIT"
	case errors.Is(err, forest.ErrClosedNode), errors.Is(err, forest.ErrNotLeaf):
		status, code = http.StatusUnprocessableEntity, "NODE_CLOSED"
	case errors.Is(err, session.ErrIncomplete):
		status, code = http.StatusUnprocessableEntity, "PROOF_INCOMPLETE"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "error", err, "code", code)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func sessionResponse(sess *session.Session) (SessionResponse, error) {
	tree, err := json.Marshal(sess.Forest())
	if err != nil {
		return SessionResponse{}, err
	}
	open := sess.Forest().OpenLeaves(sess.Root())
	if open == nil {
		open = []string{}
	}
	return SessionResponse{
		ID:         sess.ID(),
		Name:       sess.Name(),
		Root:       sess.Root(),
		Status:     sess.Status().String(),
		OpenLeaves: open,
		CreatedAt:  sess.CreatedAt(),
		Tree:       tree,
	}, nil
}

func stepResponse(st session.Step) StepResponse {
	resp := StepResponse{
		Node:          st.Node,
		Result:        string(st.Result.Kind),
		Justification: st.Result.Justification,
		Message:       st.Result.Message,
		Children:      st.Children,
	}
	if st.Result.Succeeded() {
		resp.Outcome = string(st.Result.Outcome)
		for _, g := range st.Result.Goals {
			resp.Goals = append(resp.Goals, g.String())
		}
	}
	return resp
}

func theoremSummary(t registry.Theorem) TheoremSummary {
	return TheoremSummary{ID: t.ID, Name: t.Name, Statement: t.Goal.String()}
}
