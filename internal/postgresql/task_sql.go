package postgresql

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sanLimbu/tasks-api/internal"
)

const taskColumns = "id, title, description, status, priority, due_date, category_id, user_id, created_at, updated_at"

// priorityRankSQL mirrors internal.Priority.Rank so the database sorts priorities by
// rank instead of lexically.
const priorityRankSQL = "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so a filter value always matches as a
// literal substring, never as a pattern. Pairs with ESCAPE '\' on the predicate.
func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}

// buildTaskPredicates composes the WHERE clause for task listing. The owner predicate
// always comes first, every recognized filter is ANDed after it. A non-zero overdueAsOf
// additionally restricts the set to open tasks due strictly before that date.
func buildTaskPredicates(userID uuid.UUID, filters internal.TaskFilters, overdueAsOf time.Time) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)

		return fmt.Sprintf("$%d", len(args))
	}

	where = append(where, "user_id = "+arg(userID))

	if filters.Status != nil {
		where = append(where, "status = "+arg(string(*filters.Status)))
	}

	if filters.Priority != nil {
		where = append(where, "priority = "+arg(string(*filters.Priority)))
	}

	if filters.Title != nil {
		where = append(where, "title ILIKE '%' || "+arg(escapeLike(*filters.Title))+" || '%' ESCAPE '\\'")
	}

	if filters.DueDateFrom != nil {
		where = append(where, "due_date >= "+arg(*filters.DueDateFrom))
	}

	if filters.DueDateTo != nil {
		where = append(where, "due_date <= "+arg(*filters.DueDateTo))
	}

	if filters.Search != nil {
		placeholder := arg(escapeLike(*filters.Search))
		where = append(where,
			"(title ILIKE '%' || "+placeholder+" || '%' ESCAPE '\\' OR description ILIKE '%' || "+placeholder+" || '%' ESCAPE '\\')")
	}

	if !overdueAsOf.IsZero() {
		where = append(where,
			"status IN ('TODO', 'IN_PROGRESS')",
			"due_date IS NOT NULL",
			"due_date < "+arg(overdueAsOf))
	}

	return strings.Join(where, " AND "), args
}

// buildTaskOrderBy translates sort keys into an ORDER BY clause. The record id is
// always appended as a tiebreaker so multi-key sorts stay stable across pages.
func buildTaskOrderBy(sort []internal.SortKey) string {
	if len(sort) == 0 {
		sort = internal.DefaultSort()
	}

	parts := make([]string, 0, len(sort)+1)

	for _, key := range sort {
		var expr string

		switch key.Field {
		case internal.SortFieldPriority:
			expr = priorityRankSQL
		case internal.SortFieldDueDate:
			expr = "due_date"
		default:
			expr = "created_at"
		}

		if key.Desc {
			expr += " DESC"
		}

		parts = append(parts, expr)
	}

	parts = append(parts, "id ASC")

	return strings.Join(parts, ", ")
}
