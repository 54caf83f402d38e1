package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
	"github.com/teamtasks/team-tasks-api/pkg/response"
	"github.com/teamtasks/team-tasks-api/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Title        string  `json:"title" binding:"required,min=1,max=255"`
	Description  string  `json:"description"`
	Status       string  `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	DueDate      *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Priority     *int    `json:"priority"`
	AssignedToID *string `json:"assigned_to_id" binding:"omitempty,uuid"`
}

type updateTaskRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string `json:"description"`
	Status       *string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	DueDate      *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Priority     *int    `json:"priority"`
	AssignedToID *string `json:"assigned_to_id" binding:"omitempty,uuid"`
}

type assignRequest struct {
	UserID *string `json:"user_id" binding:"omitempty,uuid"`
}

// priorityInRange guards the 1–5 invariant for every role before any
// authorization check runs.
func priorityInRange(p *int) bool {
	return p == nil || (*p >= entity.PriorityMin && *p <= entity.PriorityMax)
}

// unknownTaskFields returns payload keys outside the task schema. The
// update contract rejects the whole payload when a restricted role
// touches anything beyond its allowed set, and an unrecognized key is
// exactly that, not noise to skip.
func unknownTaskFields(keys map[string]json.RawMessage) []string {
	var out []string
	for k := range keys {
		switch k {
		case "title", "description", "status", "due_date", "priority", "assigned_to_id":
		default:
			out = append(out, k)
		}
	}
	return out
}

func parseDueDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// List GET /api/tasks
// Filters: status, assigned_to, due_date_lt, due_date_gt, search.
// Ordering: created_at, due_date, priority, optionally "-" prefixed.
func (h *TaskHandler) List(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	f := repo.TaskFilter{Search: c.Query("search")}
	if s := c.Query("status"); s != "" {
		status := entity.TaskStatus(s)
		if !status.Valid() {
			response.Error[any](c, http.StatusBadRequest, "invalid status filter", nil)
			return
		}
		f.Status = &status
	}
	if a := c.Query("assigned_to"); a != "" {
		f.AssignedTo = &a
	}
	if lt := c.Query("due_date_lt"); lt != "" {
		t, err := time.Parse(dateLayout, lt)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid due_date_lt", nil)
			return
		}
		f.DueBefore = &t
	}
	if gt := c.Query("due_date_gt"); gt != "" {
		t, err := time.Parse(dateLayout, gt)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid due_date_gt", nil)
			return
		}
		f.DueAfter = &t
	}
	if ord := c.Query("ordering"); ord != "" {
		f.Descending = strings.HasPrefix(ord, "-")
		f.OrderBy = strings.TrimPrefix(ord, "-")
	}

	tasks, err := h.Svc.List(c.Request.Context(), actor, f)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskViews(tasks), "tasks", gin.H{"count": len(tasks)})
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !priorityInRange(req.Priority) {
		writeAppError(c, apperror.WithDetails(apperror.Validation("invalid payload"),
			map[string]string{"priority": "must be between 1 and 5"}))
		return
	}

	in := application.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       entity.TaskStatus(req.Status),
		DueDate:      parseDueDate(req.DueDate),
		AssignedToID: req.AssignedToID,
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}

	t, err := h.Svc.Create(c.Request.Context(), actor, in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toTaskView(t), "task created", nil)
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	t, err := h.Svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskView(t), "task", nil)
}

// Update PUT/PATCH /api/tasks/:id
// Key presence in the body (including explicit nulls) feeds the
// allowed-field-set check, so the raw body is bound twice.
func (h *TaskHandler) Update(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req updateTaskRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !priorityInRange(req.Priority) {
		writeAppError(c, apperror.WithDetails(apperror.Validation("invalid payload"),
			map[string]string{"priority": "must be between 1 and 5"}))
		return
	}
	var keys map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&keys, binding.JSON); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	present := func(k string) bool {
		_, ok := keys[k]
		return ok
	}

	in := application.UpdateTaskInput{
		Unknown:        unknownTaskFields(keys),
		Title:          req.Title,
		TitleSet:       present("title"),
		Description:    req.Description,
		DescriptionSet: present("description"),
		DueDate:        parseDueDate(req.DueDate),
		DueDateSet:     present("due_date"),
		Priority:       req.Priority,
		PrioritySet:    present("priority"),
		AssignedToID:   req.AssignedToID,
		AssignedSet:    present("assigned_to_id"),
	}
	if req.Status != nil {
		status := entity.TaskStatus(*req.Status)
		in.Status = &status
	}
	in.StatusSet = present("status")

	t, err := h.Svc.Update(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskView(t), "task updated", nil)
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Assign POST /api/tasks/:id/assign
// Absent or empty user_id unassigns.
func (h *TaskHandler) Assign(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	// A body-less POST means "no target user", which unassigns.
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	t, err := h.Svc.Assign(c.Request.Context(), actor, c.Param("id"), req.UserID)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskView(t), "task assignment updated", nil)
}

// Search GET /api/tasks/search?q=
// Free-text search served from the Elasticsearch mirror; members only
// see their own tasks.
func (h *TaskHandler) Search(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	docs, err := h.Svc.SearchDocs(c.Request.Context(), actor, q, size)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs, "search results", gin.H{"count": len(docs)})
}
