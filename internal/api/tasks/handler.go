package tasks

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskfyer/internal/apperr"
	"taskfyer/internal/domain/tasks"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		apperr.Respond(c, apperr.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apperr.Respond(c, apperr.Validation("Invalid task id"))
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) loadTask(c *gin.Context, userID, id uint) (*tasks.Task, bool) {
	var t tasks.Task
	err := userTasksQuery(h.db.WithContext(c.Request.Context()), userID).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.ErrTaskNotFound)
		return nil, false
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return nil, false
	}
	return &t, true
}

// ------------------------------
// POST /task/create
// ------------------------------
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		apperr.Respond(c, apperr.Validation("Title is required"))
		return
	}

	t := tasks.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    tasks.PriorityLow,
		Completed:   req.Completed,
	}
	if req.Priority != "" {
		if !tasks.ValidPriority(req.Priority) {
			apperr.Respond(c, apperr.Validation("Invalid priority"))
			return
		}
		t.Priority = req.Priority
	}
	if req.DueDate == "" {
		// same default as the web client: today
		t.DueDate = h.now().UTC().Truncate(24 * time.Hour)
	} else {
		due, err := tasks.ParseDueDate(req.DueDate)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid due date"))
			return
		}
		t.DueDate = due
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&t).Error; err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ------------------------------
// GET /tasks
// ------------------------------
func (h *Handler) GetTasks(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var list []tasks.Task
	err := userTasksQuery(h.db.WithContext(c.Request.Context()), userID).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"length": len(list), "tasks": list})
}

// ------------------------------
// GET /task/:id
// ------------------------------
func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}
	t, ok := h.loadTask(c, userID, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// ------------------------------
// PATCH /task/:id
// ------------------------------
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid request body"))
		return
	}

	t, ok := h.loadTask(c, userID, id)
	if !ok {
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			apperr.Respond(c, apperr.Validation("Title is required"))
			return
		}
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		if !tasks.ValidPriority(*req.Priority) {
			apperr.Respond(c, apperr.Validation("Invalid priority"))
			return
		}
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		due, err := tasks.ParseDueDate(*req.DueDate)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid due date"))
			return
		}
		t.DueDate = due
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}

	if err := h.db.WithContext(c.Request.Context()).Save(t).Error; err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, t)
}

// ------------------------------
// DELETE /task/:id
// ------------------------------
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	res := userTasksQuery(h.db.WithContext(c.Request.Context()), userID).Delete(&tasks.Task{}, id)
	if res.Error != nil {
		apperr.Respond(c, apperr.Internal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.ErrTaskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
