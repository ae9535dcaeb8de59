package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type PageRequest struct {
	Page  int
	Limit int
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

func NewPagination(total int64, req PageRequest) Pagination {
	req = req.normalized()
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Pagination{Total: total, Page: req.Page, Limit: req.Limit, TotalPages: pages}
}

// loadPage reads one page of rows and the total count concurrently.
func loadPage[T any](
	ctx context.Context,
	req PageRequest,
	list func(ctx context.Context, limit, offset int) ([]T, error),
	count func(ctx context.Context) (int64, error),
) ([]T, Pagination, error) {
	req = req.normalized()
	var (
		rows  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = list(gctx, req.Limit, req.offset())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Pagination{}, err
	}
	return rows, NewPagination(total, req), nil
}
