// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const postTable = "post"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListPage(ctx context.Context, limit, offset int) ([]*models.Post, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// Option configures a post repository.
type Option func(*postRepository)

// WithClock overrides the clock used for create_at.
func WithClock(now func() time.Time) Option {
	return func(r *postRepository) {
		r.now = now
	}
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, opts ...Option) PostRepository {
	r := &postRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", postTable)()

	if errs := formOf(post).Validate(); errs.Any() {
		return models.NewFormValidationError(errs)
	}

	post.CreateAt = r.now().UTC().Truncate(time.Microsecond)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := idExists(tx, post.ID)
		if err != nil {
			return err
		}
		if taken {
			return models.NewDuplicateIDError("Post", post.ID)
		}
		return tx.Create(post).Error
	})
	return translateError(err, post.ID)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer observability.TrackQuery("get", postTable)()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translateError(err, id)
	}
	return &post, nil
}

// ListPage reads one page of posts, newest first, and the total count from a single snapshot.
func (r *postRepository) ListPage(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", postTable)()

	var (
		posts []*models.Post
		total int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Count(&total).Error; err != nil {
			return err
		}
		return tx.Order("create_at DESC").Order("id ASC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error
	}, r.snapshotOptions()...)
	if err != nil {
		return nil, 0, translateError(err, "")
	}

	return posts, total, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("count", postTable)()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return 0, translateError(err, "")
	}
	return total, nil
}

// Update replaces id, title and content of the post stored under id. create_at is left as is.
func (r *postRepository) Update(ctx context.Context, id string, post *models.Post) (*models.Post, error) {
	defer observability.TrackQuery("update", postTable)()

	if errs := formOf(post).Validate(); errs.Any() {
		return nil, models.NewFormValidationError(errs)
	}

	var updated models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			return err
		}

		if post.ID != id {
			taken, err := idExists(tx, post.ID)
			if err != nil {
				return err
			}
			if taken {
				return models.NewDuplicateIDError("Post", post.ID)
			}
		}

		err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
			"id":      post.ID,
			"title":   post.Title,
			"content": post.Content,
		}).Error
		if err != nil {
			return err
		}

		return tx.Where("id = ?", post.ID).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, translateError(err, post.ID)
	}

	return &updated, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", postTable)()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return translateError(result.Error, id)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// snapshotOptions returns transaction options that make the count and the page read agree.
// Only PostgreSQL needs them; SQLite transactions already read a consistent snapshot.
func (r *postRepository) snapshotOptions() []*sql.TxOptions {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

func idExists(tx *gorm.DB, id string) (bool, error) {
	var n int64
	if err := tx.Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func formOf(post *models.Post) models.PostForm {
	return models.PostForm{Slug: post.ID, Title: post.Title, Content: post.Content}
}

func translateError(err error, id string) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", id)
	}
	if isDuplicateKey(err) {
		return models.NewDuplicateIDError("Post", id)
	}
	return models.NewInternalError(err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
