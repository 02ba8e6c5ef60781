package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/service"
)

func TestParseListParams(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		params, err := parseListParams(url.Values{})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if params.Page != 1 {
			t.Fatalf("expected page 1, got %d", params.Page)
		}

		if len(params.Sort) != 1 || params.Sort[0].Field != internal.SortFieldCreatedAt || !params.Sort[0].Desc {
			t.Fatalf("expected newest-first default, got %v", params.Sort)
		}
	})

	t.Run("recognized filters", func(t *testing.T) {
		t.Parallel()

		q := url.Values{}
		q.Set("status", "TODO")
		q.Set("priority", "HIGH")
		q.Set("title", "report")
		q.Set("due_date_from", "2024-03-01")
		q.Set("due_date_to", "2024-03-31")
		q.Set("search", "groceries")
		q.Set("ordering", "-priority,due_date")
		q.Set("page", "2")

		params, err := parseListParams(q)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		f := params.Filters

		if *f.Status != internal.StatusTodo || *f.Priority != internal.PriorityHigh {
			t.Fatalf("unexpected enum filters: %+v", f)
		}

		if *f.Title != "report" || *f.Search != "groceries" {
			t.Fatalf("unexpected text filters: %+v", f)
		}

		want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		if !f.DueDateFrom.Equal(want) {
			t.Fatalf("unexpected due_date_from: %v", f.DueDateFrom)
		}

		if len(params.Sort) != 2 || params.Sort[0].Field != internal.SortFieldPriority {
			t.Fatalf("unexpected sort: %v", params.Sort)
		}

		if params.Page != 2 {
			t.Fatalf("expected page 2, got %d", params.Page)
		}
	})

	t.Run("unrecognized parameters are ignored", func(t *testing.T) {
		t.Parallel()

		q := url.Values{}
		q.Set("nonsense", "whatever")
		q.Set("status__in", "TODO,DONE")

		params, err := parseListParams(q)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if params.Filters != (internal.TaskFilters{}) {
			t.Fatalf("expected no filters, got %+v", params.Filters)
		}
	})

	invalid := []struct {
		name     string
		key      string
		value    string
		wantCode internal.ErrorCode
	}{
		{"unknown status", "status", "ARCHIVED", internal.ErrorCodeInvalidArgument},
		{"unknown priority", "priority", "URGENT", internal.ErrorCodeInvalidArgument},
		{"malformed due_date_from", "due_date_from", "03/01/2024", internal.ErrorCodeInvalidArgument},
		{"malformed due_date_to", "due_date_to", "yesterday", internal.ErrorCodeInvalidArgument},
		{"unknown ordering key", "ordering", "title", internal.ErrorCodeInvalidArgument},
		{"non-integer page", "page", "two", internal.ErrorCodeNotFound},
	}

	for _, tt := range invalid {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := url.Values{}
			q.Set(tt.key, tt.value)

			_, err := parseListParams(q)

			var ierr *internal.Error
			if !errors.As(err, &ierr) || ierr.Code() != tt.wantCode {
				t.Fatalf("expected code %d, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestNewTask_Serialization(t *testing.T) {
	t.Parallel()

	task := internal.Task{
		ID:       "task-1",
		Title:    "buy milk",
		Status:   internal.StatusTodo,
		Priority: internal.PriorityLow,
		DueDate:  time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}

	res := NewTask(task, "jamie@example.com")

	if res.DueDate == nil || *res.DueDate != "2024-03-20" {
		t.Fatalf("expected date-only due date, got %v", res.DueDate)
	}

	if res.Category != nil {
		t.Fatal("expected nil category")
	}

	if res.User != "jamie@example.com" {
		t.Fatalf("unexpected user: %q", res.User)
	}

	// No due date serializes as null, not as the zero time.
	task.DueDate = time.Time{}
	if got := NewTask(task, ""); got.DueDate != nil {
		t.Fatalf("expected nil due date, got %v", got.DueDate)
	}
}

type fakeTaskService struct {
	listFn        func(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error)
	createFn      func(ctx context.Context, userID string, params service.CreateTaskParams) (internal.Task, error)
	bulkFn        func(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error)
	statisticsFn  func(ctx context.Context, userID string) (internal.TaskStatistics, error)
	listOverdueFn func(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error)
}

func (f *fakeTaskService) Create(ctx context.Context, userID string, params service.CreateTaskParams) (internal.Task, error) {
	return f.createFn(ctx, userID, params)
}

func (f *fakeTaskService) Task(context.Context, string, string) (internal.Task, error) {
	return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
}

func (f *fakeTaskService) Update(context.Context, string, string, service.CreateTaskParams) (internal.Task, error) {
	return internal.Task{}, nil
}

func (f *fakeTaskService) Patch(context.Context, string, string, service.UpdateTaskParams) (internal.Task, error) {
	return internal.Task{}, nil
}

func (f *fakeTaskService) Delete(context.Context, string, string) error {
	return nil
}

func (f *fakeTaskService) List(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
	return f.listFn(ctx, userID, params)
}

func (f *fakeTaskService) ListOverdue(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
	return f.listOverdueFn(ctx, userID, params)
}

func (f *fakeTaskService) Statistics(ctx context.Context, userID string) (internal.TaskStatistics, error) {
	return f.statisticsFn(ctx, userID)
}

func (f *fakeTaskService) BulkUpdateStatus(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error) {
	return f.bulkFn(ctx, userID, ids, status)
}

func serveAs(t *testing.T, handler *TaskHandler, user internal.User, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	handler.Register(router)

	rec := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), principalKey{}, user))

	router.ServeHTTP(rec, req)

	return rec
}

func TestTaskHandler_List(t *testing.T) {
	t.Parallel()

	user := internal.User{ID: "user-1", Email: "jamie@example.com"}

	t.Run("pagination envelope with relative links", func(t *testing.T) {
		t.Parallel()

		svc := &fakeTaskService{
			listFn: func(_ context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
				if userID != "user-1" {
					t.Fatalf("unexpected owner %q", userID)
				}

				return internal.TaskPage{
					Tasks: []internal.Task{{ID: "task-1", Title: "buy milk", Status: internal.StatusTodo, Priority: internal.PriorityLow}},
					Total: 25,
					Page:  params.Page,
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/tasks?priority=LOW&page=2", nil)
		rec := serveAs(t, NewTaskHandler(svc), user, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		var res ListTasksResponse
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("decoding response: %s", err)
		}

		if res.Count != 25 || len(res.Results) != 1 {
			t.Fatalf("unexpected envelope: %+v", res)
		}

		if res.Next == nil || !strings.Contains(*res.Next, "page=3") || !strings.Contains(*res.Next, "priority=LOW") {
			t.Fatalf("unexpected next link: %v", res.Next)
		}

		if res.Previous == nil || !strings.Contains(*res.Previous, "page=1") {
			t.Fatalf("unexpected previous link: %v", res.Previous)
		}

		if res.Results[0].User != "jamie@example.com" {
			t.Fatalf("unexpected task owner: %q", res.Results[0].User)
		}
	})

	t.Run("last page has no next link", func(t *testing.T) {
		t.Parallel()

		svc := &fakeTaskService{
			listFn: func(_ context.Context, _ string, params internal.ListParams) (internal.TaskPage, error) {
				return internal.TaskPage{Total: 25, Page: params.Page}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/tasks?page=3", nil)
		rec := serveAs(t, NewTaskHandler(svc), user, req)

		var res ListTasksResponse
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("decoding response: %s", err)
		}

		if res.Next != nil {
			t.Fatalf("expected no next link, got %v", res.Next)
		}
	})

	t.Run("malformed query renders the error envelope", func(t *testing.T) {
		t.Parallel()

		svc := &fakeTaskService{
			listFn: func(context.Context, string, internal.ListParams) (internal.TaskPage, error) {
				t.Fatal("service should not be called")

				return internal.TaskPage{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/tasks?status=ARCHIVED", nil)
		rec := serveAs(t, NewTaskHandler(svc), user, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("non-integer page is a 404", func(t *testing.T) {
		t.Parallel()

		svc := &fakeTaskService{
			listFn: func(context.Context, string, internal.ListParams) (internal.TaskPage, error) {
				t.Fatal("service should not be called")

				return internal.TaskPage{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/tasks?page=two", nil)
		rec := serveAs(t, NewTaskHandler(svc), user, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTaskHandler_Create(t *testing.T) {
	t.Parallel()

	user := internal.User{ID: "user-1", Email: "jamie@example.com"}

	svc := &fakeTaskService{
		createFn: func(_ context.Context, userID string, params service.CreateTaskParams) (internal.Task, error) {
			if params.DueDate.IsZero() {
				t.Fatal("expected a parsed due date")
			}

			return internal.Task{
				ID:       "task-1",
				Title:    params.Title,
				Status:   internal.StatusTodo,
				Priority: internal.PriorityMedium,
				DueDate:  params.DueDate,
				UserID:   userID,
			}, nil
		},
	}

	body := strings.NewReader(`{"title":"buy milk","due_date":"2024-03-20"}`)
	req := httptest.NewRequest(http.MethodPost, "/tasks", body)
	rec := serveAs(t, NewTaskHandler(svc), user, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var res Task
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %s", err)
	}

	if res.DueDate == nil || *res.DueDate != "2024-03-20" {
		t.Fatalf("unexpected due date: %v", res.DueDate)
	}
}

func TestTaskHandler_BulkStatus(t *testing.T) {
	t.Parallel()

	user := internal.User{ID: "user-1"}

	svc := &fakeTaskService{
		bulkFn: func(_ context.Context, _ string, ids []string, status internal.Status) (int64, error) {
			if status != internal.StatusDone || len(ids) != 2 {
				t.Fatalf("unexpected input: %v %s", ids, status)
			}

			return 2, nil
		},
	}

	body := strings.NewReader(`{"ids":["a","b"],"status":"DONE"}`)
	req := httptest.NewRequest(http.MethodPost, "/tasks/bulk-status", body)
	rec := serveAs(t, NewTaskHandler(svc), user, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var res BulkUpdateStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %s", err)
	}

	if res.Updated != 2 {
		t.Fatalf("expected 2 updated, got %d", res.Updated)
	}
}

func TestTaskHandler_Statistics(t *testing.T) {
	t.Parallel()

	user := internal.User{ID: "user-1"}

	svc := &fakeTaskService{
		statisticsFn: func(context.Context, string) (internal.TaskStatistics, error) {
			return internal.TaskStatistics{
				Total:             7,
				TodoCount:         3,
				InProgressCount:   2,
				DoneCount:         2,
				HighPriorityCount: 1,
				OverdueCount:      4,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/tasks/statistics", nil)
	rec := serveAs(t, NewTaskHandler(svc), user, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %s", err)
	}

	want := map[string]int64{
		"total_tasks":         7,
		"todo_count":          3,
		"in_progress_count":   2,
		"done_count":          2,
		"high_priority_count": 1,
		"overdue_count":       4,
	}

	for key, value := range want {
		if res[key] != value {
			t.Fatalf("expected %s=%d, got %d", key, value, res[key])
		}
	}
}
