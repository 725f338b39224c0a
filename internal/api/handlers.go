// handlers.go - Run lifecycle handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
)

// RunHandler serves the run lifecycle: create, inspect, start, continue,
// restart, delete.
type RunHandler struct {
	pipeline *pipeline.Manager
}

// NewRunHandler creates a new run handler instance
func NewRunHandler(p *pipeline.Manager) *RunHandler {
	return &RunHandler{pipeline: p}
}

// HandleIndex opens a fresh run and lands the browser on its upload view
func (h *RunHandler) HandleIndex(c echo.Context) error {
	run := h.pipeline.CreateRun()
	return c.Redirect(http.StatusFound, "/run/"+run.ID+"/view/upload")
}

// HandleCreateRun opens a fresh run in the idle stage
func (h *RunHandler) HandleCreateRun(c echo.Context) error {
	run := h.pipeline.CreateRun()
	return c.JSON(http.StatusCreated, run)
}

// HandleGetRun returns the run's current stage, marker and stage payloads.
// Polled by the loading views; reading counts as activity.
func (h *RunHandler) HandleGetRun(c echo.Context) error {
	id := c.Param("id")
	run, ok := h.pipeline.GetRun(id)
	if !ok {
		return NewNotFoundError("run", id)
	}
	h.pipeline.TouchRun(id)
	return c.JSON(http.StatusOK, run)
}

// HandleStartRun launches upload + domain analysis for the staged batch
func (h *RunHandler) HandleStartRun(c echo.Context) error {
	id := c.Param("id")
	if err := h.pipeline.Start(id); err != nil {
		return err
	}
	run, _ := h.pipeline.GetRun(id)
	return c.JSON(http.StatusAccepted, run)
}

// HandleContinueRun advances a paused run to its next stage
func (h *RunHandler) HandleContinueRun(c echo.Context) error {
	id := c.Param("id")
	if err := h.pipeline.Continue(id); err != nil {
		return err
	}
	run, _ := h.pipeline.GetRun(id)
	return c.JSON(http.StatusAccepted, run)
}

// HandleRestartRun abandons all progress and returns the run to the upload
// view with an empty batch. In-flight stage goroutines are cancelled and
// their late responses discarded.
func (h *RunHandler) HandleRestartRun(c echo.Context) error {
	id := c.Param("id")
	if err := h.pipeline.Restart(id); err != nil {
		return err
	}
	run, _ := h.pipeline.GetRun(id)
	return c.JSON(http.StatusOK, run)
}

// HandleDeleteRun discards the run entirely
func (h *RunHandler) HandleDeleteRun(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.pipeline.GetRun(id); !ok {
		return NewNotFoundError("run", id)
	}
	h.pipeline.Delete(id)
	return c.NoContent(http.StatusNoContent)
}

// HandleRunKeepAlive extends the run's idle lifetime
func (h *RunHandler) HandleRunKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if !h.pipeline.TouchRun(id) {
		return NewNotFoundError("run", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
