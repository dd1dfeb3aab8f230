// Package service holds the request-level orchestration between handlers and the post store.
package service

import (
	"context"

	"inkpost/internal/models"
	"inkpost/internal/pagination"
	"inkpost/internal/repository"
)

// PostService validates forms and shapes store results for the page handlers.
type PostService struct {
	postRepo repository.PostRepository
	pageSize int
}

// PostPage is one page of the post listing plus the pager state.
type PostPage struct {
	Posts     []*models.Post `json:"posts"`
	Page      int            `json:"page"`
	PageCount int            `json:"pageCount"`
	Pages     []int          `json:"-"`
	HasPrev   bool           `json:"-"`
	HasNext   bool           `json:"-"`
}

// NewPostService builds a PostService. A non-positive pageSize falls back to pagination.DefaultPageSize.
func NewPostService(postRepo repository.PostRepository, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &PostService{postRepo: postRepo, pageSize: pageSize}
}

// PageSize returns the configured listing page size.
func (s *PostService) PageSize() int {
	return s.pageSize
}

// ListPosts returns the requested page. Pages past the end are empty, not errors.
func (s *PostService) ListPosts(ctx context.Context, page int) (*PostPage, error) {
	window := pagination.Compute(0, s.pageSize, page)

	posts, total, err := s.postRepo.ListPage(ctx, window.Limit, window.Offset)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	window = pagination.Compute(total, s.pageSize, page)
	return &PostPage{
		Posts:     posts,
		Page:      window.Page,
		PageCount: window.PageCount,
		Pages:     pagination.Pages(window),
		HasPrev:   window.HasPrev,
		HasNext:   window.HasNext,
	}, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost validates every field before touching the store.
func (s *PostService) CreatePost(ctx context.Context, form models.PostForm) (*models.Post, error) {
	form = form.Normalize()
	if errs := form.Validate(); errs.Any() {
		return nil, models.NewFormValidationError(errs)
	}

	post := &models.Post{ID: form.Slug, Title: form.Title, Content: form.Content}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost validates the form and replaces the post stored under id, possibly renaming it.
func (s *PostService) UpdatePost(ctx context.Context, id string, form models.PostForm) (*models.Post, error) {
	form = form.Normalize()
	if errs := form.Validate(); errs.Any() {
		return nil, models.NewFormValidationError(errs)
	}

	return s.postRepo.Update(ctx, id, &models.Post{ID: form.Slug, Title: form.Title, Content: form.Content})
}

func (s *PostService) DeletePost(ctx context.Context, id string) error {
	return s.postRepo.Delete(ctx, id)
}
