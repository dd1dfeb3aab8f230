// Package models contains the blog's domain entities and error taxonomy.
package models

import (
	"strings"
	"time"
)

// Post is the only persisted entity. ID doubles as the slug and URL path segment.
type Post struct {
	ID       string    `gorm:"column:id;primaryKey;type:varchar(255)" json:"id"`
	Title    string    `gorm:"column:title;type:text;not null" json:"title"`
	Content  string    `gorm:"column:content;type:text;not null" json:"content"`
	CreateAt time.Time `gorm:"column:create_at;type:timestamp;not null;index:idx_post_create_at" json:"create_at"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string {
	return "post"
}

// PostForm is the submitted create/edit form.
type PostForm struct {
	Slug    string `form:"slug" json:"slug"`
	Title   string `form:"title" json:"title"`
	Content string `form:"content" json:"content"`
}

// Normalize trims the slug; title and content are kept as submitted.
func (f PostForm) Normalize() PostForm {
	f.Slug = strings.TrimSpace(f.Slug)
	return f
}

// PostFormErrors carries one optional message per form field. An empty string means no error.
type PostFormErrors struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

const (
	MsgSlugRequired    = "slug is required"
	MsgTitleRequired   = "title is required"
	MsgContentRequired = "content is required"
	MsgSlugTaken       = "slug already exists"
)

// Validate checks every field independently and never stops at the first failure.
func (f PostForm) Validate() PostFormErrors {
	var errs PostFormErrors
	if strings.TrimSpace(f.Slug) == "" {
		errs.Slug = MsgSlugRequired
	}
	if strings.TrimSpace(f.Title) == "" {
		errs.Title = MsgTitleRequired
	}
	if strings.TrimSpace(f.Content) == "" {
		errs.Content = MsgContentRequired
	}
	return errs
}

// Any reports whether at least one field failed.
func (e PostFormErrors) Any() bool {
	return e.Slug != "" || e.Title != "" || e.Content != ""
}

// Error implements error so the field errors can travel inside an AppError.
func (e PostFormErrors) Error() string {
	var parts []string
	for _, msg := range []string{e.Slug, e.Title, e.Content} {
		if msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}
