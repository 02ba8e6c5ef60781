package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/service"
)

const dateLayout = "2006-01-02"

// TaskService ...
type TaskService interface {
	Create(ctx context.Context, userID string, params service.CreateTaskParams) (internal.Task, error)
	Task(ctx context.Context, userID, id string) (internal.Task, error)
	Update(ctx context.Context, userID, id string, params service.CreateTaskParams) (internal.Task, error)
	Patch(ctx context.Context, userID, id string, params service.UpdateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error)
	ListOverdue(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error)
	Statistics(ctx context.Context, userID string) (internal.TaskStatistics, error)
	BulkUpdateStatus(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error)
}

// TaskHandler ...
type TaskHandler struct {
	svc TaskService
}

// NewTaskHandler ...
func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (t *TaskHandler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", t.list)
		r.Post("/", t.create)
		r.Get("/statistics", t.statistics)
		r.Get("/overdue", t.overdue)
		r.Post("/bulk-status", t.bulkStatus)
		r.Get("/{id}", t.task)
		r.Put("/{id}", t.update)
		r.Patch("/{id}", t.patch)
		r.Delete("/{id}", t.delete)
	})
}

// Task is the wire representation of a task.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"due_date"`
	Category    *string   `json:"category"`
	User        string    `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask converts a domain task for rendering. The owner is rendered as the
// principal's email, requests never see foreign tasks in the first place.
func NewTask(task internal.Task, ownerEmail string) Task {
	res := Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		User:        ownerEmail,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if !task.DueDate.IsZero() {
		due := task.DueDate.Format(dateLayout)
		res.DueDate = &due
	}

	if task.CategoryID != "" {
		category := task.CategoryID
		res.Category = &category
	}

	return res
}

// CreateTaskRequest defines the request used for creating tasks. The owner is always
// the authenticated principal, a user field in the body is ignored.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	Category    *string `json:"category"`
}

func (req CreateTaskRequest) convert() (service.CreateTaskParams, error) {
	params := service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      internal.Status(req.Status),
		Priority:    internal.Priority(req.Priority),
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return service.CreateTaskParams{}, err
		}

		params.DueDate = due
	}

	if req.Category != nil {
		params.CategoryID = *req.Category
	}

	return params, nil
}

// UpdateTaskRequest defines the request used for partially updating tasks, absent
// fields keep their stored values.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Category    *string `json:"category"`
}

func (req UpdateTaskRequest) convert() (service.UpdateTaskParams, error) {
	params := service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.Category,
	}

	if req.Status != nil {
		status := internal.Status(*req.Status)
		params.Status = &status
	}

	if req.Priority != nil {
		priority := internal.Priority(*req.Priority)
		params.Priority = &priority
	}

	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return service.UpdateTaskParams{}, err
		}

		params.DueDate = &due
	}

	return params, nil
}

// ListTasksResponse is the pagination envelope.
type ListTasksResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Task  `json:"results"`
}

// TaskStatisticsResponse mirrors the single-pass aggregate.
type TaskStatisticsResponse struct {
	TotalTasks        int64 `json:"total_tasks"`
	TodoCount         int64 `json:"todo_count"`
	InProgressCount   int64 `json:"in_progress_count"`
	DoneCount         int64 `json:"done_count"`
	HighPriorityCount int64 `json:"high_priority_count"`
	OverdueCount      int64 `json:"overdue_count"`
}

// BulkUpdateStatusRequest defines the request used for updating many tasks' status at
// once. Ids not owned by the principal are skipped, not reported.
type BulkUpdateStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkUpdateStatusResponse reports how many records actually changed.
type BulkUpdateStatusResponse struct {
	Updated int64 `json:"updated"`
}

func (t *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	params, err := req.convert()
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	task, err := t.svc.Create(r.Context(), user.ID, params)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewTask(task, user.Email), http.StatusCreated)
}

func (t *TaskHandler) task(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	task, err := t.svc.Task(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewTask(task, user.Email), http.StatusOK)
}

func (t *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	params, err := req.convert()
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	task, err := t.svc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), params)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewTask(task, user.Email), http.StatusOK)
}

func (t *TaskHandler) patch(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	params, err := req.convert()
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	task, err := t.svc.Patch(r.Context(), user.ID, chi.URLParam(r, "id"), params)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewTask(task, user.Email), http.StatusOK)
}

func (t *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	if err := t.svc.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (t *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	t.renderList(w, r, t.svc.List)
}

func (t *TaskHandler) overdue(w http.ResponseWriter, r *http.Request) {
	t.renderList(w, r, t.svc.ListOverdue)
}

func (t *TaskHandler) renderList(w http.ResponseWriter, r *http.Request,
	list func(context.Context, string, internal.ListParams) (internal.TaskPage, error),
) {
	user, _ := PrincipalFromContext(r.Context())

	params, err := parseListParams(r.URL.Query())
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	page, err := list(r.Context(), user.ID, params)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	resp := ListTasksResponse{
		Count:   page.Total,
		Results: make([]Task, 0, len(page.Tasks)),
	}

	for _, task := range page.Tasks {
		resp.Results = append(resp.Results, NewTask(task, user.Email))
	}

	if page.HasNext() {
		resp.Next = pageLink(r, page.Page+1)
	}

	if page.HasPrevious() {
		resp.Previous = pageLink(r, page.Page-1)
	}

	renderResponse(w, resp, http.StatusOK)
}

func (t *TaskHandler) statistics(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	stats, err := t.svc.Statistics(r.Context(), user.ID)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, TaskStatisticsResponse{
		TotalTasks:        stats.Total,
		TodoCount:         stats.TodoCount,
		InProgressCount:   stats.InProgressCount,
		DoneCount:         stats.DoneCount,
		HighPriorityCount: stats.HighPriorityCount,
		OverdueCount:      stats.OverdueCount,
	}, http.StatusOK)
}

func (t *TaskHandler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req BulkUpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	updated, err := t.svc.BulkUpdateStatus(r.Context(), user.ID, req.IDs, internal.Status(req.Status))
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, BulkUpdateStatusResponse{Updated: updated}, http.StatusOK)
}

// parseListParams resolves the recognized list query parameters. Unrecognized
// parameters are ignored by construction, only known keys are ever read.
func parseListParams(q url.Values) (internal.ListParams, error) {
	filters, err := parseTaskFilters(q)
	if err != nil {
		return internal.ListParams{}, err
	}

	sort, err := internal.ParseSort(q.Get("ordering"))
	if err != nil {
		return internal.ListParams{}, err
	}

	page, err := parsePage(q.Get("page"))
	if err != nil {
		return internal.ListParams{}, err
	}

	return internal.ListParams{
		Filters: filters,
		Sort:    sort,
		Page:    page,
	}, nil
}

func parseTaskFilters(q url.Values) (internal.TaskFilters, error) {
	var filters internal.TaskFilters

	if v := q.Get("status"); v != "" {
		status := internal.Status(v)
		if err := status.Validate(); err != nil {
			return internal.TaskFilters{}, err
		}

		filters.Status = &status
	}

	if v := q.Get("priority"); v != "" {
		priority := internal.Priority(v)
		if err := priority.Validate(); err != nil {
			return internal.TaskFilters{}, err
		}

		filters.Priority = &priority
	}

	if v := q.Get("title"); v != "" {
		title := v
		filters.Title = &title
	}

	if v := q.Get("due_date_from"); v != "" {
		from, err := parseDate("due_date_from", v)
		if err != nil {
			return internal.TaskFilters{}, err
		}

		filters.DueDateFrom = &from
	}

	if v := q.Get("due_date_to"); v != "" {
		to, err := parseDate("due_date_to", v)
		if err != nil {
			return internal.TaskFilters{}, err
		}

		filters.DueDateTo = &to
	}

	if v := q.Get("search"); v != "" {
		search := v
		filters.Search = &search
	}

	return filters, nil
}

// parsePage follows the pagination boundary contract: anything that is not a positive
// integer behaves like a missing page.
func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "invalid page")
	}

	return page, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, internal.NewInvalidFieldError(field, "invalid date, expected YYYY-MM-DD")
	}

	return t, nil
}

func pageLink(r *http.Request, page int) *string {
	u := *r.URL

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	link := u.String()

	return &link
}
