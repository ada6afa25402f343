package handlers

import (
	"errors"
	"strings"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/core/services"
	"teenskill-api/internal/pkg/pagination"
	"teenskill-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles task lifecycle endpoints
type TaskHandler struct {
	taskService   *services.TaskService
	safetyService *services.SafetyService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, safetyService *services.SafetyService) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		safetyService: safetyService,
	}
}

// CreateTaskRequest represents create task request body
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      int64  `json:"budget"`
	Deadline    string `json:"deadline"`
}

// TakeTaskRequest represents take task request body
type TakeTaskRequest struct {
	ParentalCode string `json:"parental_code"`
}

// SubmitTaskRequest represents task submission request body
type SubmitTaskRequest struct {
	SubmissionURL  string `json:"submission_url"`
	SubmissionNote string `json:"submission_note"`
}

// ScreenTaskRequest represents a safety pre-check request body
type ScreenTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles task creation
// @Summary Create task
// @Description Post a new open task (clients only). The posting is screened by the safety classifier first; screening is fail-open.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTaskRequest true "Task data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return response.BadRequest(c, "Title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return response.BadRequest(c, "Description is required")
	}
	if req.Budget <= 0 {
		return response.BadRequest(c, "Budget must be greater than zero")
	}

	verdict := h.safetyService.Screen(c.Context(), req.Title, req.Description)
	if !verdict.Allowed {
		return response.BadRequest(c, verdict.Reason)
	}

	input := &services.CreateTaskInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Budget:      req.Budget,
		Deadline:    strings.TrimSpace(req.Deadline),
	}

	task, err := h.taskService.Create(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAClient):
			return response.Forbidden(c, "Only clients can post tasks")
		case errors.Is(err, services.ErrInvalidTaskInput):
			return response.BadRequest(c, "Title, description and a positive budget are required")
		default:
			return response.InternalServerError(c, "Failed to create task")
		}
	}

	return response.Created(c, "Task created successfully", fiber.Map{
		"task":         task.ToResponse(),
		"safety_check": verdict,
	})
}

// Screen handles a standalone safety pre-check
// @Summary Screen a task draft
// @Description Run the safety classifier on a draft without creating it
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScreenTaskRequest true "Draft data"
// @Success 200 {object} response.Response
// @Router /tasks/screen [post]
func (h *TaskHandler) Screen(c *fiber.Ctx) error {
	var req ScreenTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return response.BadRequest(c, "Title or description is required")
	}

	verdict := h.safetyService.Screen(c.Context(), req.Title, req.Description)

	return response.Success(c, "Screening completed", fiber.Map{
		"safety_check": verdict,
	})
}

// ListOpen handles the public marketplace listing
// @Summary List open tasks
// @Description List open tasks, newest first, paginated
// @Tags Tasks
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} pagination.Response
// @Router /tasks [get]
func (h *TaskHandler) ListOpen(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	tasks, total, err := h.taskService.ListOpen(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list tasks")
	}

	items := make([]*models.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, task.ToResponse())
	}

	return c.JSON(pagination.NewResponse(items, params, total))
}

// ListMine handles the caller's own task list
// @Summary List my tasks
// @Description Clients see tasks they posted, freelancers see tasks assigned to them
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /tasks/my [get]
func (h *TaskHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	tasks, err := h.taskService.ListForUser(c.Context(), userID, role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			return response.Forbidden(c, "Unknown role")
		}
		return response.InternalServerError(c, "Failed to list tasks")
	}

	items := make([]*models.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, task.ToResponse())
	}

	return response.Success(c, "Tasks retrieved successfully", fiber.Map{
		"tasks": items,
	})
}

// Get handles task detail
// @Summary Get task
// @Description Get a task by ID
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	task, err := h.taskService.GetByID(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to get task")
	}

	return response.Success(c, "Task retrieved successfully", fiber.Map{
		"task": task.ToResponse(),
	})
}

// Delete handles task deletion
// @Summary Delete task
// @Description Delete an own task while it is still open
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	if err := h.taskService.Delete(c.Context(), userID, taskID); err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrNotTaskOwner):
			return response.Forbidden(c, "You can only delete your own tasks")
		case errors.Is(err, services.ErrTaskConflict):
			return response.Conflict(c, "Only open tasks can be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete task")
		}
	}

	return response.Success(c, "Task deleted successfully", nil)
}

// Take handles task acceptance
// @Summary Take task
// @Description Accept an open task (freelancers only, parental code required)
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param body body TakeTaskRequest true "Parental code"
// @Success 200 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /tasks/{id}/take [post]
func (h *TaskHandler) Take(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	var req TakeTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	task, err := h.taskService.Take(c.Context(), userID, taskID, req.ParentalCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAFreelancer):
			return response.Forbidden(c, "Only freelancers can take tasks")
		case errors.Is(err, services.ErrPaymentSetupNeeded):
			return response.PaymentRequired(c, "Set up your payment details before taking tasks")
		case errors.Is(err, services.ErrQuotaExhausted):
			return response.TooManyRequests(c, "Weekly task quota exhausted")
		case errors.Is(err, services.ErrWrongParentalCode):
			return response.Forbidden(c, "Wrong parental code")
		case errors.Is(err, services.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrTaskConflict):
			return response.Conflict(c, "Task was already taken")
		default:
			return response.InternalServerError(c, "Failed to take task")
		}
	}

	return response.Success(c, "Task taken successfully", fiber.Map{
		"task": task.ToResponse(),
	})
}

// Submit handles work submission
// @Summary Submit work
// @Description Submit work on a taken task (assigned freelancer only)
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param body body SubmitTaskRequest true "Submission data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tasks/{id}/submit [post]
func (h *TaskHandler) Submit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	var req SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.SubmissionURL) == "" {
		return response.BadRequest(c, "Submission URL is required")
	}

	input := &services.SubmitInput{
		SubmissionURL:  strings.TrimSpace(req.SubmissionURL),
		SubmissionNote: strings.TrimSpace(req.SubmissionNote),
	}

	task, err := h.taskService.Submit(c.Context(), userID, taskID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrNotAssignee):
			return response.Forbidden(c, "Task is assigned to another freelancer")
		case errors.Is(err, services.ErrInvalidTaskInput):
			return response.BadRequest(c, "Submission URL is required")
		case errors.Is(err, services.ErrTaskConflict):
			return response.Conflict(c, "Task is not awaiting submission")
		default:
			return response.InternalServerError(c, "Failed to submit work")
		}
	}

	return response.Success(c, "Work submitted successfully", fiber.Map{
		"task": task.ToResponse(),
	})
}

// Complete handles payment release
// @Summary Complete task and release payment
// @Description Mark a submitted task completed and credit the freelancer (task owner only)
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	task, err := h.taskService.CompletePayment(c.Context(), userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrNotTaskOwner):
			return response.Forbidden(c, "Only the task owner can release payment")
		case errors.Is(err, services.ErrTaskNotAssigned):
			return response.Conflict(c, "Task has no assigned freelancer")
		case errors.Is(err, services.ErrTaskConflict):
			return response.Conflict(c, "Task is not awaiting review")
		default:
			return response.InternalServerError(c, "Failed to complete task")
		}
	}

	return response.Success(c, "Payment released successfully", fiber.Map{
		"task": task.ToResponse(),
	})
}

// Quota handles the weekly quota status
// @Summary Get weekly quota status
// @Description Show how many tasks were taken in the rolling 7-day window
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /tasks/quota [get]
func (h *TaskHandler) Quota(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.taskService.WeeklyTakenCount(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get quota status")
	}

	return response.Success(c, "Quota retrieved successfully", fiber.Map{
		"weekly_taken": count,
	})
}

// parseTaskID reads the :id route param
func parseTaskID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid task id")
	}
	return uint(id), nil
}
