package server

import (
	"errors"
	"net/url"

	"inkpost/internal/models"
	"inkpost/internal/views"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

// wantsJSON reports whether the client prefers JSON over HTML.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// postID returns the decoded :id route parameter.
func postID(c *fiber.Ctx) string {
	raw := c.Params("id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// render writes component as the HTML response body.
func render(c *fiber.Ctx, status int, component templ.Component) error {
	c.Status(status)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return component.Render(c.UserContext(), c.Response().BodyWriter())
}

// seeOther redirects so the browser follows up with a GET.
func seeOther(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}

// respondError writes err as JSON or as the error page, depending on what the client accepts.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if wantsJSON(c) {
		return models.RespondWithError(c, status, err)
	}

	message := "Internal server error"
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		message = appErr.Message
	}
	return errorPage(c, status, message)
}

func errorPage(c *fiber.Ctx, status int, message string) error {
	if wantsJSON(c) {
		return c.Status(status).JSON(models.ErrorResponse{Error: message})
	}
	return render(c, status, views.Error(status, message))
}

// formFailure answers a rejected create or edit submission. Field errors re-render the form;
// anything else falls through to respondError.
func formFailure(c *fiber.Ctx, err error, rerender func(models.PostFormErrors) templ.Component) error {
	var fields models.PostFormErrors
	switch {
	case models.HasCode(err, models.CodeValidation) && errors.As(err, &fields):
		if wantsJSON(c) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"errors":  fields,
			})
		}
		return render(c, fiber.StatusUnprocessableEntity, rerender(fields))
	case models.HasCode(err, models.CodeDuplicateID):
		if wantsJSON(c) {
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return render(c, fiber.StatusConflict, rerender(models.PostFormErrors{Slug: models.MsgSlugTaken}))
	default:
		return respondError(c, err)
	}
}
