package internal

import (
	"math"
	"strings"
	"time"
)

// PageSize is the fixed number of tasks per page. Not client-configurable.
const PageSize = 10

// maxPage caps the page number so the record offset arithmetic cannot overflow.
const maxPage = math.MaxInt / PageSize

// TaskFilters composes the recognized list predicates with logical AND. Nil fields are
// not applied. Search matches the value against title OR description, case-insensitively,
// and is itself ANDed with the other predicates.
type TaskFilters struct {
	Status      *Status
	Priority    *Priority
	Title       *string
	DueDateFrom *time.Time // inclusive
	DueDateTo   *time.Time // inclusive
	Search      *string
}

// SortField enumerates the recognized ordering keys.
type SortField string

const (
	SortFieldPriority  SortField = "priority"
	SortFieldDueDate   SortField = "due_date"
	SortFieldCreatedAt SortField = "created_at"
)

// SortKey is a single ordering token, already resolved from the wire format.
type SortKey struct {
	Field SortField
	Desc  bool
}

// DefaultSort orders by newest first.
func DefaultSort() []SortKey {
	return []SortKey{{Field: SortFieldCreatedAt, Desc: true}}
}

// ParseSort resolves a comma-separated ordering specification, each token optionally
// prefixed with "-" for descending. Unlike filters, unrecognized keys are rejected.
// An empty specification yields the default ordering.
func ParseSort(ordering string) ([]SortKey, error) {
	if strings.TrimSpace(ordering) == "" {
		return DefaultSort(), nil
	}

	var keys []SortKey

	for _, token := range strings.Split(ordering, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		key := SortKey{}
		if strings.HasPrefix(token, "-") {
			key.Desc = true
			token = token[1:]
		}

		switch SortField(token) {
		case SortFieldPriority, SortFieldDueDate, SortFieldCreatedAt:
			key.Field = SortField(token)
		default:
			return nil, NewInvalidFieldError("ordering", "unknown ordering key: "+token)
		}

		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return DefaultSort(), nil
	}

	return keys, nil
}

// ListParams carries everything the task list pipeline needs besides the principal.
type ListParams struct {
	Filters TaskFilters
	Sort    []SortKey
	Page    int // 1-based
}

// Offset translates the page number into a record offset.
func (p ListParams) Offset() int {
	return (p.Page - 1) * PageSize
}

// TaskPage is one page of a filtered, ordered result set.
type TaskPage struct {
	Tasks []Task
	Total int64
	Page  int
}

// TotalPages reports how many pages the result set spans. An empty set still has one
// (empty) first page.
func (p TaskPage) TotalPages() int {
	if p.Total == 0 {
		return 1
	}

	return int((p.Total + PageSize - 1) / PageSize)
}

// HasNext ...
func (p TaskPage) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious ...
func (p TaskPage) HasPrevious() bool {
	return p.Page > 1
}

// CheckPage rejects page numbers no result set could ever contain: below one, or large
// enough that the record offset would overflow. Callers run it before querying,
// ValidatePage re-checks it against the actual total afterwards.
func CheckPage(page int) error {
	if page < 1 || page > maxPage {
		return NewErrorf(ErrorCodeNotFound, "invalid page")
	}

	return nil
}

// ValidatePage reports whether the requested page exists for a result set of total
// records. Out-of-range pages behave like missing resources, matching the boundary
// behavior of the pagination contract.
func ValidatePage(page int, total int64) error {
	if err := CheckPage(page); err != nil {
		return err
	}

	last := TaskPage{Total: total}.TotalPages()
	if page > last {
		return NewErrorf(ErrorCodeNotFound, "invalid page")
	}

	return nil
}

// TaskStatistics is the single-pass aggregate over one user's tasks. Overdue counts
// tasks still open (TODO or IN_PROGRESS) whose due date is strictly before today.
type TaskStatistics struct {
	Total             int64
	TodoCount         int64
	InProgressCount   int64
	DoneCount         int64
	HighPriorityCount int64
	OverdueCount      int64
}
