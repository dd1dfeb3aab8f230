package server

import (
	"inkpost/internal/markdown"
	"inkpost/internal/models"
	"inkpost/internal/pagination"
	"inkpost/internal/views"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /?page=N
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page := pagination.ParsePage(c.Query("page"))

	result, err := s.postService.ListPosts(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"posts":     result.Posts,
			"pageCount": result.PageCount,
			"page":      result.Page,
		})
	}

	return render(c, fiber.StatusOK, views.List(views.NewListData(
		result.Posts, result.Page, result.PageCount, result.Pages, result.HasPrev, result.HasNext,
	)))
}

// GetPost handles GET /posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), postID(c))
	if err != nil {
		return respondError(c, err)
	}

	body := markdown.ToHTML(post.Content, s.markdownOpts)
	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"post": post,
			"html": string(body),
		})
	}
	return render(c, fiber.StatusOK, views.Detail(post, body))
}

// NewPostForm handles GET /posts/new
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, views.NewPostForm(models.PostForm{}, models.PostFormErrors{}))
}

// CreatePost handles POST /posts/new
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form models.PostForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if _, err := s.postService.CreatePost(c.UserContext(), form); err != nil {
		return formFailure(c, err, func(errs models.PostFormErrors) templ.Component {
			return views.NewPostForm(form, errs)
		})
	}

	return seeOther(c, "/")
}

// EditPostForm handles GET /posts/:id/edit
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id := postID(c)
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{"post": post})
	}
	form := models.PostForm{Slug: post.ID, Title: post.Title, Content: post.Content}
	return render(c, fiber.StatusOK, views.EditPostForm(id, form, models.PostFormErrors{}))
}

// UpdatePost handles POST /posts/:id/edit. A changed slug renames the post.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id := postID(c)

	var form models.PostForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.postService.UpdatePost(c.UserContext(), id, form)
	if err != nil {
		return formFailure(c, err, func(errs models.PostFormErrors) templ.Component {
			return views.EditPostForm(id, form, errs)
		})
	}

	return seeOther(c, views.PostPath(updated.ID))
}

// DeletePost handles POST /posts/:id/delete
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), postID(c)); err != nil {
		return respondError(c, err)
	}
	return seeOther(c, "/")
}

// ChromaCSS serves the code highlighting stylesheet.
func (s *Server) ChromaCSS(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/css; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendString(markdown.ChromaCSS())
}
