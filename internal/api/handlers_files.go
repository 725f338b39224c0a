// handlers_files.go - Batch staging handlers
package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// HandleAddFiles stages a multipart batch on the run's collector. The whole
// batch is validated before anything is kept: one rejected file rejects all.
func (h *RunHandler) HandleAddFiles(c echo.Context) error {
	id := c.Param("id")
	coll, ok := h.pipeline.Collector(id)
	if !ok {
		return NewNotFoundError("run", id)
	}
	h.pipeline.TouchRun(id)

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return NewBadRequestError("no files in request", nil)
	}

	batch := make([]models.BatchFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return NewBadRequestError("unreadable file: "+fh.Filename, err)
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return NewBadRequestError("unreadable file: "+fh.Filename, err)
		}
		batch = append(batch, models.BatchFile{
			Name:    fh.Filename,
			Size:    fh.Size,
			AddedAt: time.Now(),
			Content: content,
		})
	}

	if err := coll.Add(batch); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fileListResponse(coll.Files()))
}

// HandleListFiles returns the staged batch
func (h *RunHandler) HandleListFiles(c echo.Context) error {
	id := c.Param("id")
	coll, ok := h.pipeline.Collector(id)
	if !ok {
		return NewNotFoundError("run", id)
	}
	return c.JSON(http.StatusOK, fileListResponse(coll.Files()))
}

// HandleRemoveFile removes one staged file by position. The file that was
// last in the list takes the vacated slot.
func (h *RunHandler) HandleRemoveFile(c echo.Context) error {
	id := c.Param("id")
	coll, ok := h.pipeline.Collector(id)
	if !ok {
		return NewNotFoundError("run", id)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return NewBadRequestError("file index must be an integer", err)
	}
	if err := coll.RemoveAt(index); err != nil {
		return NewBadRequestError("file index out of range", err)
	}
	return c.JSON(http.StatusOK, fileListResponse(coll.Files()))
}

func fileListResponse(files []models.BatchFile) map[string]interface{} {
	return map[string]interface{}{
		"files": files,
		"count": len(files),
	}
}
