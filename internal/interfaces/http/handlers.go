package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/service"
	"github.com/garyjia/mark-console/internal/application/session"
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/event"
	"github.com/garyjia/mark-console/internal/domain/form"
	"github.com/garyjia/mark-console/internal/domain/workflow"
	"github.com/garyjia/mark-console/internal/infrastructure/export"
)

// Version is reported by the health check
const Version = "1.0.0"

// Handlers contains all HTTP request handlers
type Handlers struct {
	console     service.ConsoleService
	journal     service.JournalService
	defaultLang string
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(console service.ConsoleService, journal service.JournalService, defaultLang string, logger Logger) *Handlers {
	return &Handlers{
		console:     console,
		journal:     journal,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Version        string `json:"version"`
	ActiveSessions int    `json:"active_sessions"`
}

// OpenSessionRequest opens a dialog for a mark
type OpenSessionRequest struct {
	MarkID string `json:"mark_id"`
	Lang   string `json:"lang" binding:"omitempty,min=2,max=8"`
}

// SelectActionRequest picks an action
type SelectActionRequest struct {
	ActionID string `json:"action_id" binding:"required"`
}

// UpdateFieldRequest sets a field; an empty value clears it
type UpdateFieldRequest struct {
	Value *string `json:"value" binding:"required"`
}

// SearchRequest updates a search buffer
type SearchRequest struct {
	Text string `json:"text"`
}

// ChooseRequest picks a suggestion
type ChooseRequest struct {
	Value string `json:"value" binding:"required"`
}

// SelectActionResponse is the view after selection plus the event of a pass-through action
type SelectActionResponse struct {
	View  *service.View `json:"view"`
	Event *event.Event  `json:"event,omitempty"`
}

// ListActionsRequest represents query parameters for the journal
type ListActionsRequest struct {
	ActionID string `form:"action_id"`
	MarkRef  string `form:"mark_ref"`
	Since    string `form:"since"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
	Lang     string `form:"lang"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:         "healthy",
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			Version:        Version,
			ActiveSessions: h.console.ActiveSessions(),
		},
	})
}

// Catalog handles GET /api/catalog
func (h *Handlers) Catalog(c *gin.Context) {
	actions, err := h.console.Catalog(h.lang(c.Query("lang")))
	if err != nil {
		h.fail(c, "Failed to describe catalog", err)
		return
	}
	ok(c, http.StatusOK, actions)
}

// OpenSession handles POST /api/sessions. A given mark id must name a known mark.
func (h *Handlers) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if !h.bind(c, &req) {
		return
	}

	if req.MarkID != "" {
		if _, err := h.console.Mark(c.Request.Context(), req.MarkID); err != nil {
			h.fail(c, "Failed to open session", err, "mark_id", req.MarkID)
			return
		}
	}

	view, err := h.console.Open(c.Request.Context(), req.MarkID, h.lang(req.Lang))
	if err != nil {
		h.fail(c, "Failed to open session", err, "mark_id", req.MarkID)
		return
	}
	ok(c, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	view, err := h.console.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get session", err, "session_id", c.Param("id"))
		return
	}
	ok(c, http.StatusOK, view)
}

// SelectAction handles POST /api/sessions/:id/action
func (h *Handlers) SelectAction(c *gin.Context) {
	var req SelectActionRequest
	if !h.bind(c, &req) {
		return
	}

	view, evt, err := h.console.SelectAction(c.Request.Context(), c.Param("id"), action.ID(req.ActionID))
	if err != nil {
		h.fail(c, "Failed to select action", err, "session_id", c.Param("id"), "action_id", req.ActionID)
		return
	}
	ok(c, http.StatusOK, SelectActionResponse{View: view, Event: evt})
}

// UpdateField handles PUT /api/sessions/:id/fields/:name
func (h *Handlers) UpdateField(c *gin.Context) {
	var req UpdateFieldRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.console.UpdateField(c.Request.Context(), c.Param("id"), c.Param("name"), *req.Value)
	if err != nil {
		h.fail(c, "Failed to update field", err, "session_id", c.Param("id"), "field", c.Param("name"))
		return
	}
	ok(c, http.StatusOK, view)
}

// Search handles PUT /api/sessions/:id/search/:name
func (h *Handlers) Search(c *gin.Context) {
	var req SearchRequest
	if !h.bind(c, &req) {
		return
	}

	choices, err := h.console.Search(c.Request.Context(), c.Param("id"), c.Param("name"), req.Text)
	if err != nil {
		h.fail(c, "Failed to search options", err, "session_id", c.Param("id"), "field", c.Param("name"))
		return
	}
	if choices == nil {
		choices = []form.Choice{}
	}
	ok(c, http.StatusOK, choices)
}

// Choose handles POST /api/sessions/:id/search/:name/choose
func (h *Handlers) Choose(c *gin.Context) {
	var req ChooseRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.console.Choose(c.Request.Context(), c.Param("id"), c.Param("name"), req.Value)
	if err != nil {
		h.fail(c, "Failed to choose suggestion", err, "session_id", c.Param("id"), "field", c.Param("name"))
		return
	}
	ok(c, http.StatusOK, view)
}

// Back handles POST /api/sessions/:id/back
func (h *Handlers) Back(c *gin.Context) {
	view, err := h.console.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to go back", err, "session_id", c.Param("id"))
		return
	}
	ok(c, http.StatusOK, view)
}

// Submit handles POST /api/sessions/:id/submit. An incomplete form is not an
// error: the response carries accepted=false and the missing fields.
func (h *Handlers) Submit(c *gin.Context) {
	outcome, err := h.console.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to submit", err, "session_id", c.Param("id"))
		return
	}
	ok(c, http.StatusOK, outcome)
}

// CloseSession handles DELETE /api/sessions/:id
func (h *Handlers) CloseSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.console.Close(c.Request.Context(), id); err != nil {
		h.fail(c, "Failed to close session", err, "session_id", id)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "closed": true})
}

// ListMarks handles GET /api/marks
func (h *Handlers) ListMarks(c *gin.Context) {
	marks, err := h.console.Marks(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, "Failed to list marks", err)
		return
	}
	ok(c, http.StatusOK, marks)
}

// GetMark handles GET /api/marks/:id
func (h *Handlers) GetMark(c *gin.Context) {
	mark, err := h.console.Mark(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get mark", err, "mark_id", c.Param("id"))
		return
	}
	ok(c, http.StatusOK, mark)
}

// ListActions handles GET /api/actions
func (h *Handlers) ListActions(c *gin.Context) {
	filter, _, valid := h.journalFilter(c)
	if !valid {
		return
	}

	records, err := h.journal.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to list actions", err)
		return
	}
	ok(c, http.StatusOK, records)
}

// ExportActions handles GET /api/actions/export
func (h *Handlers) ExportActions(c *gin.Context) {
	filter, lang, valid := h.journalFilter(c)
	if !valid {
		return
	}
	filter.Limit = 0
	filter.Offset = 0

	var buf bytes.Buffer
	if err := h.journal.Export(c.Request.Context(), &buf, filter, lang); err != nil {
		h.fail(c, "Failed to export actions", err)
		return
	}

	filename := fmt.Sprintf("journal-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *Handlers) journalFilter(c *gin.Context) (port.ActionRecordFilter, string, bool) {
	var req ListActionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		fail(c, http.StatusBadRequest, "invalid query parameters")
		return port.ActionRecordFilter{}, "", false
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	filter := port.ActionRecordFilter{
		ActionID: req.ActionID,
		MarkRef:  req.MarkRef,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.Since != "" {
		since, err := parseSince(req.Since)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid since: "+strconv.Quote(req.Since))
			return port.ActionRecordFilter{}, "", false
		}
		filter.Since = since
	}
	return filter, h.lang(req.Lang), true
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(form.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *Handlers) lang(requested string) string {
	if requested == "" {
		return h.defaultLang
	}
	return requested
}

func (h *Handlers) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Error("Invalid request body", "path", c.FullPath(), "error", err)
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// fail maps a service error to a status and writes it. Contract violations
// from the host are logged at error; everything else only when it is a 5xx.
func (h *Handlers) fail(c *gin.Context, msg string, err error, keysAndValues ...interface{}) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || errors.Is(err, action.ErrUnknownAction) {
		h.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
	fail(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, action.ErrUnknownAction),
		errors.Is(err, action.ErrUnknownField),
		errors.Is(err, action.ErrNotChoice),
		errors.Is(err, form.ErrKindMismatch),
		errors.Is(err, form.ErrOptionNotAllowed),
		errors.Is(err, form.ErrInvalidDate),
		errors.Is(err, session.ErrFieldNotInAction),
		errors.Is(err, service.ErrInvalidMarkStatus):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed),
		errors.Is(err, session.ErrNotFilling),
		errors.Is(err, session.ErrClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}
