package internal

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestParseSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []SortKey
		withErr bool
	}{
		{
			"empty uses default",
			"",
			[]SortKey{{Field: SortFieldCreatedAt, Desc: true}},
			false,
		},
		{
			"blank uses default",
			"   ",
			[]SortKey{{Field: SortFieldCreatedAt, Desc: true}},
			false,
		},
		{
			"single ascending",
			"due_date",
			[]SortKey{{Field: SortFieldDueDate}},
			false,
		},
		{
			"single descending",
			"-priority",
			[]SortKey{{Field: SortFieldPriority, Desc: true}},
			false,
		},
		{
			"multiple keys",
			"-priority,due_date",
			[]SortKey{
				{Field: SortFieldPriority, Desc: true},
				{Field: SortFieldDueDate},
			},
			false,
		},
		{
			"empty tokens skipped",
			",due_date,",
			[]SortKey{{Field: SortFieldDueDate}},
			false,
		},
		{
			"unknown key rejected",
			"title",
			nil,
			true,
		},
		{
			"unknown key among valid ones rejected",
			"due_date,unknown",
			nil,
			true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSort(tt.input)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if tt.withErr {
				var ierr *Error
				if !errors.As(err, &ierr) || ierr.Code() != ErrorCodeInvalidArgument {
					t.Fatalf("expected invalid argument, got %v", err)
				}

				return
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskPage_TotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int64
		want  int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{25, 3},
		{30, 3},
	}

	for _, tt := range tests {
		page := TaskPage{Total: tt.total}
		if got := page.TotalPages(); got != tt.want {
			t.Errorf("total %d: expected %d pages, got %d", tt.total, tt.want, got)
		}
	}
}

func TestTaskPage_Navigation(t *testing.T) {
	t.Parallel()

	// 25 records span pages of 10, 10 and 5.
	first := TaskPage{Total: 25, Page: 1}
	if !first.HasNext() || first.HasPrevious() {
		t.Fatal("first page should only have a next page")
	}

	middle := TaskPage{Total: 25, Page: 2}
	if !middle.HasNext() || !middle.HasPrevious() {
		t.Fatal("middle page should have both neighbors")
	}

	last := TaskPage{Total: 25, Page: 3}
	if last.HasNext() || !last.HasPrevious() {
		t.Fatal("last page should only have a previous page")
	}
}

func TestValidatePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    int
		total   int64
		withErr bool
	}{
		{"first page of empty set", 1, 0, false},
		{"second page of empty set", 2, 0, true},
		{"last partial page", 3, 25, false},
		{"beyond last page", 4, 25, true},
		{"zero page", 0, 25, true},
		{"negative page", -1, 25, true},
		{"page beyond the offset bound", math.MaxInt, 25, true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePage(tt.page, tt.total)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if tt.withErr {
				var ierr *Error
				if !errors.As(err, &ierr) || ierr.Code() != ErrorCodeNotFound {
					t.Fatalf("expected not found, got %v", err)
				}
			}
		})
	}
}

func TestCheckPage(t *testing.T) {
	t.Parallel()

	// Pages past the bound would overflow the offset arithmetic, they are rejected
	// before any query runs.
	for _, page := range []int{0, -1, maxPage + 1, math.MaxInt} {
		err := CheckPage(page)

		var ierr *Error
		if !errors.As(err, &ierr) || ierr.Code() != ErrorCodeNotFound {
			t.Fatalf("page %d: expected not found, got %v", page, err)
		}
	}

	for _, page := range []int{1, 2, maxPage} {
		if err := CheckPage(page); err != nil {
			t.Fatalf("page %d: unexpected error: %s", page, err)
		}
	}
}

func TestListParams_Offset(t *testing.T) {
	t.Parallel()

	if got := (ListParams{Page: 1}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}

	if got := (ListParams{Page: 3}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}

	if got := (ListParams{Page: maxPage}).Offset(); got < 0 {
		t.Fatalf("expected non-negative offset at the bound, got %d", got)
	}
}
