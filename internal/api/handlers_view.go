// handlers_view.go - Server-rendered dashboard views
package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jeevamani007/data-analysis-sub000/internal/history"
	"github.com/jeevamani007/data-analysis-sub000/internal/models"
	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/segment"
	"github.com/jeevamani007/data-analysis-sub000/internal/view"
)

// HistoryReader exposes the completed-run history to view and history
// handlers. Satisfied by *history.Store; stubbed in tests.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

// pageTitles names each view for the browser tab.
var pageTitles = map[models.ViewMarker]string{
	models.ViewUpload:    "Upload — Account Analysis",
	models.ViewLoading:   "Working — Account Analysis",
	models.ViewDatabases: "Data Domains — Account Analysis",
	models.ViewColumns:   "Columns — Account Analysis",
	models.ViewAnalysis:  "Analyzing — Account Analysis",
	models.ViewResults:   "Results — Account Analysis",
}

// ViewHandler renders the stage views and their swap-in partials.
type ViewHandler struct {
	pipeline *pipeline.Manager
	renderer *view.Renderer
	history  HistoryReader
}

// NewViewHandler creates a new view handler instance
func NewViewHandler(p *pipeline.Manager, r *view.Renderer, hist HistoryReader) *ViewHandler {
	return &ViewHandler{pipeline: p, renderer: r, history: hist}
}

// HandleViewPage renders the view named by the URL marker. The marker is
// plain navigation state: any known marker renders against the run's
// current data, so back/forward and reload land somewhere sensible.
func (h *ViewHandler) HandleViewPage(c echo.Context) error {
	id := c.Param("id")
	run, ok := h.pipeline.GetRun(id)
	if !ok {
		return NewNotFoundError("run", id)
	}
	h.pipeline.TouchRun(id)

	marker := models.ViewMarker(c.Param("marker"))
	title, known := pageTitles[marker]
	if !known {
		return NewNotFoundError("view", string(marker))
	}

	page := view.Page{Title: title, Run: run}

	switch marker {
	case models.ViewUpload:
		if coll, ok := h.pipeline.Collector(id); ok {
			page.Files = coll.Files()
		}
		page.Recent = h.recentRecords(c, 10)
	case models.ViewResults:
		if run.Result != nil {
			filter := c.QueryParam("filter")
			if filter == "" {
				filter = segment.FilterAll
			}
			page.TableRows = segment.Rows(run.Result.AgeAnalysis, filter)
			page.TableColumns = segment.DisplayColumns(page.TableRows)
			page.TableFilter = filter
		}
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderPage(&buf, marker, page); err != nil {
		return NewInternalError("failed to render view", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// HandleAccountTable renders the segmented account table partial for the
// requested age filter.
func (h *ViewHandler) HandleAccountTable(c echo.Context) error {
	id := c.Param("id")
	run, ok := h.pipeline.GetRun(id)
	if !ok {
		return NewNotFoundError("run", id)
	}
	if run.Result == nil {
		return NewConflictError("no analysis results available")
	}

	filter := c.QueryParam("filter")
	if filter == "" {
		filter = segment.FilterAll
	}
	rows := segment.Rows(run.Result.AgeAnalysis, filter)

	var buf bytes.Buffer
	err := h.renderer.RenderAccountTable(&buf, view.TableData{
		Rows:    rows,
		Columns: segment.DisplayColumns(rows),
		Filter:  filter,
	})
	if err != nil {
		return NewInternalError("failed to render table", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// HandleRecentHistory returns the latest completed and failed runs
func (h *ViewHandler) HandleRecentHistory(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewBadRequestError("limit must be a positive integer", err)
		}
		limit = n
	}

	if h.history == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"records": []history.Record{},
			"count":   0,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	records, err := h.history.Recent(ctx, limit)
	if err != nil {
		return NewInternalError("failed to read run history", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// recentRecords fetches history for the upload view, tolerating store
// failures: the upload page works without its history strip.
func (h *ViewHandler) recentRecords(c echo.Context, limit int) []history.Record {
	if h.history == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	records, err := h.history.Recent(ctx, limit)
	if err != nil {
		c.Logger().Warnf("history unavailable: %v", err)
		return nil
	}
	return records
}
