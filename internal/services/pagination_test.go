package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	return testutil.Logger(t)
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		total int64
		req   PageRequest
		want  Pagination
	}{
		{0, PageRequest{}, Pagination{Total: 0, Page: 1, Limit: 10, TotalPages: 0}},
		{21, PageRequest{Page: 3, Limit: 10}, Pagination{Total: 21, Page: 3, Limit: 10, TotalPages: 3}},
		{5, PageRequest{Page: -2, Limit: 500}, Pagination{Total: 5, Page: 1, Limit: 100, TotalPages: 1}},
	}
	for _, tc := range cases {
		if got := NewPagination(tc.total, tc.req); got != tc.want {
			t.Fatalf("NewPagination(%d, %+v): want=%+v got=%+v", tc.total, tc.req, tc.want, got)
		}
	}
}

func TestLoadPagePassesOffsetAndPropagatesErrors(t *testing.T) {
	var gotLimit, gotOffset int
	rows, page, err := loadPage(context.Background(), PageRequest{Page: 3, Limit: 4},
		func(_ context.Context, limit, offset int) ([]int, error) {
			gotLimit, gotOffset = limit, offset
			return []int{9}, nil
		},
		func(context.Context) (int64, error) { return 9, nil },
	)
	if err != nil {
		t.Fatalf("loadPage: %v", err)
	}
	if gotLimit != 4 || gotOffset != 8 || len(rows) != 1 || page.TotalPages != 3 {
		t.Fatalf("limit=%d offset=%d rows=%v page=%+v", gotLimit, gotOffset, rows, page)
	}

	boom := errors.New("count failed")
	_, _, err = loadPage(context.Background(), PageRequest{},
		func(context.Context, int, int) ([]int, error) { return nil, nil },
		func(context.Context) (int64, error) { return 0, boom },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("want count error, got %v", err)
	}
}
