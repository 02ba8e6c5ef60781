package postgresql

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sanLimbu/tasks-api/internal"
)

func TestBuildTaskPredicates(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("owner predicate always first", func(t *testing.T) {
		t.Parallel()

		where, args := buildTaskPredicates(userID, internal.TaskFilters{}, time.Time{})

		if where != "user_id = $1" {
			t.Fatalf("unexpected where clause: %s", where)
		}

		if len(args) != 1 || args[0] != userID {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("all filters combined with AND", func(t *testing.T) {
		t.Parallel()

		status := internal.StatusTodo
		priority := internal.PriorityHigh
		title := "report"
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

		where, args := buildTaskPredicates(userID, internal.TaskFilters{
			Status:      &status,
			Priority:    &priority,
			Title:       &title,
			DueDateFrom: &from,
			DueDateTo:   &to,
		}, time.Time{})

		want := "user_id = $1 AND status = $2 AND priority = $3 AND " +
			"title ILIKE '%' || $4 || '%' ESCAPE '\\' AND due_date >= $5 AND due_date <= $6"

		if where != want {
			t.Fatalf("unexpected where clause:\n got %s\nwant %s", where, want)
		}

		if len(args) != 6 {
			t.Fatalf("expected 6 args, got %d", len(args))
		}
	})

	t.Run("search reuses a single placeholder across both columns", func(t *testing.T) {
		t.Parallel()

		search := "groceries"

		where, args := buildTaskPredicates(userID, internal.TaskFilters{Search: &search}, time.Time{})

		want := "user_id = $1 AND " +
			"(title ILIKE '%' || $2 || '%' ESCAPE '\\' OR description ILIKE '%' || $2 || '%' ESCAPE '\\')"

		if where != want {
			t.Fatalf("unexpected where clause:\n got %s\nwant %s", where, want)
		}

		if len(args) != 2 || args[1] != search {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("pattern metacharacters match literally", func(t *testing.T) {
		t.Parallel()

		title := `50%_done\`

		_, args := buildTaskPredicates(userID, internal.TaskFilters{Title: &title}, time.Time{})

		if len(args) != 2 || args[1] != `50\%\_done\\` {
			t.Fatalf("expected escaped pattern, got %v", args)
		}

		search := "a_c"

		_, args = buildTaskPredicates(userID, internal.TaskFilters{Search: &search}, time.Time{})

		if len(args) != 2 || args[1] != `a\_c` {
			t.Fatalf("expected escaped pattern, got %v", args)
		}
	})

	t.Run("overdue restricts to open tasks due before the cutoff", func(t *testing.T) {
		t.Parallel()

		asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

		where, args := buildTaskPredicates(userID, internal.TaskFilters{}, asOf)

		for _, fragment := range []string{
			"status IN ('TODO', 'IN_PROGRESS')",
			"due_date IS NOT NULL",
			"due_date < $2",
		} {
			if !strings.Contains(where, fragment) {
				t.Fatalf("missing fragment %q in %s", fragment, where)
			}
		}

		if len(args) != 2 || args[1] != asOf {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("overdue composes with filters", func(t *testing.T) {
		t.Parallel()

		priority := internal.PriorityHigh
		asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

		where, args := buildTaskPredicates(userID, internal.TaskFilters{Priority: &priority}, asOf)

		if !strings.Contains(where, "priority = $2") || !strings.Contains(where, "due_date < $3") {
			t.Fatalf("unexpected where clause: %s", where)
		}

		if len(args) != 3 {
			t.Fatalf("expected 3 args, got %d", len(args))
		}
	})
}

func TestBuildTaskOrderBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sort []internal.SortKey
		want string
	}{
		{
			"empty uses default",
			nil,
			"created_at DESC, id ASC",
		},
		{
			"priority sorts by rank not lexically",
			[]internal.SortKey{{Field: internal.SortFieldPriority, Desc: true}},
			priorityRankSQL + " DESC, id ASC",
		},
		{
			"multiple keys keep their order",
			[]internal.SortKey{
				{Field: internal.SortFieldDueDate},
				{Field: internal.SortFieldCreatedAt, Desc: true},
			},
			"due_date, created_at DESC, id ASC",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := buildTaskOrderBy(tt.sort); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
