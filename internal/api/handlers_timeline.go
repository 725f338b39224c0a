// handlers_timeline.go - Timeline drill-down handlers
package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/timeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/view"
)

// TimelineHandler serves the three per-run timeline controllers.
type TimelineHandler struct {
	pipeline *pipeline.Manager
	renderer *view.Renderer
}

// NewTimelineHandler creates a new timeline handler instance
func NewTimelineHandler(p *pipeline.Manager, r *view.Renderer) *TimelineHandler {
	return &TimelineHandler{pipeline: p, renderer: r}
}

type selectRequest struct {
	Index  int    `json:"index"`
	Anchor string `json:"anchor"`
}

// controller resolves the run's timeline controller for the URL kind.
func (h *TimelineHandler) controller(c echo.Context) (*timeline.Controller, error) {
	id := c.Param("id")
	set, ok := h.pipeline.Timelines(id)
	if !ok {
		if _, exists := h.pipeline.GetRun(id); !exists {
			return nil, NewNotFoundError("run", id)
		}
		return nil, NewConflictError("no analysis results to browse")
	}

	kind := timeline.Kind(c.Param("kind"))
	ctl, ok := set.Get(kind)
	if !ok {
		return nil, NewNotFoundError("timeline", string(kind))
	}
	h.pipeline.TouchRun(id)
	return ctl, nil
}

// HandleTimelineSelect applies a day selection and returns the detail panel
// markup to swap in. Selecting the already-selected day (or index -3)
// collapses back to the placeholder; -1 and -2 address the boundary nodes.
func (h *TimelineHandler) HandleTimelineSelect(c echo.Context) error {
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}

	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	panel := ctl.Select(req.Index, req.Anchor)

	var buf bytes.Buffer
	if err := h.renderer.RenderTimelinePanel(&buf, panel); err != nil {
		return NewInternalError("failed to render timeline panel", err)
	}
	c.Response().Header().Set("X-Timeline-Anchor", panel.Anchor)
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// HandleTimelineEntriesMsgpack returns the full entry sequence in msgpack,
// the compact form the results view loads for client-side scrubbing.
func (h *TimelineHandler) HandleTimelineEntriesMsgpack(c echo.Context) error {
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(ctl.Entries())
	if err != nil {
		return NewInternalError("failed to encode entries", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}
