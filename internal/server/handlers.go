package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tasklist/internal/service"
)

// record is the wire shape of a task.
type record struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// writeRequest is the body of POST and PUT.
type writeRequest struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func toRecord(t service.Task) record {
	return record{ID: t.ID, Title: t.Title, Completed: t.Completed, CreatedAt: t.CreatedAt}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleList(c *gin.Context) {
	tasks, err := s.backend.LoadAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	records := make([]record, len(tasks))
	for i, t := range tasks {
		records[i] = toRecord(t)
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreate(c *gin.Context) {
	req, ok := bindWrite(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	task, err := s.backend.Create(ctx, req.Title)
	if err != nil {
		s.fail(c, err)
		return
	}
	if req.Completed {
		task.Completed = true
		if task, err = s.backend.Update(ctx, task); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, toRecord(task))
}

func (s *Server) handleUpdate(c *gin.Context) {
	req, ok := bindWrite(c)
	if !ok {
		return
	}

	task, err := s.backend.Update(c.Request.Context(), service.Task{
		ID:        c.Param("id"),
		Title:     req.Title,
		Completed: req.Completed,
		CreatedAt: req.CreatedAt,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecord(task))
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.backend.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindWrite decodes a POST/PUT body and trims its title. It writes a 400
// and returns false for undecodable bodies or blank titles.
func bindWrite(c *gin.Context) (writeRequest, bool) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return req, false
	}
	return req, true
}

// fail writes the status matching err's kind.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch service.KindOf(err) {
	case service.KindNotFound:
		status, msg = http.StatusNotFound, "not found"
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindStorageUnavailable, service.KindNetwork, service.KindBadStatus, service.KindAuth:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}
