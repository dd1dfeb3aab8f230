// Package views renders the blog's HTML pages as templ components.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"inkpost/internal/markdown"
	"inkpost/internal/models"

	"github.com/a-h/templ"
)

// TimeLayout is how create_at is shown to readers.
const TimeLayout = "2006-01-02 15:04:05"

const excerptChars = 160

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"list", "detail", "form", "signup", "error"} {
		t := template.Must(template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
		pages[name] = t.Lookup("layout")
	}
}

type layoutData struct {
	Title string
	Body  any
}

func page(name, title string, body any) templ.Component {
	return templ.FromGoHTML(pages[name], layoutData{Title: title, Body: body})
}

// PostPath is the URL of a post's detail page.
func PostPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ListItem is one row of the post listing.
type ListItem struct {
	ID       string
	Title    string
	CreateAt string
	Excerpt  string
}

// ListData drives the listing page and its pager.
type ListData struct {
	Posts     []ListItem
	Page      int
	PageCount int
	Pages     []int
	HasPrev   bool
	HasNext   bool
	PrevPage  int
	NextPage  int
}

// NewListData builds the listing view model.
func NewListData(posts []*models.Post, page, pageCount int, pages []int, hasPrev, hasNext bool) ListData {
	items := make([]ListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, ListItem{
			ID:       p.ID,
			Title:    p.Title,
			CreateAt: FormatTime(p.CreateAt),
			Excerpt:  markdown.Excerpt(p.Content, excerptChars),
		})
	}
	return ListData{
		Posts:     items,
		Page:      page,
		PageCount: pageCount,
		Pages:     pages,
		HasPrev:   hasPrev,
		HasNext:   hasNext,
		PrevPage:  page - 1,
		NextPage:  page + 1,
	}
}

// List renders the paginated post listing.
func List(data ListData) templ.Component {
	return page("list", "", data)
}

type detailData struct {
	ID       string
	Title    string
	CreateAt string
	HTML     template.HTML
}

// Detail renders one post with its markdown body converted to HTML.
func Detail(post *models.Post, body template.HTML) templ.Component {
	return page("detail", post.Title, detailData{
		ID:       post.ID,
		Title:    post.Title,
		CreateAt: FormatTime(post.CreateAt),
		HTML:     body,
	})
}

// FormData drives both the create and the edit form.
type FormData struct {
	Heading      string
	Action       string
	Submit       string
	DeleteAction string
	Values       models.PostForm
	Errors       models.PostFormErrors
}

// NewPostForm is the create form, optionally refilled with a rejected submission.
func NewPostForm(values models.PostForm, errs models.PostFormErrors) templ.Component {
	return page("form", "New post", FormData{
		Heading: "New post",
		Action:  "/posts/new",
		Submit:  "Create",
		Values:  values,
		Errors:  errs,
	})
}

// EditPostForm is the edit form for the post stored under id. It carries the delete button.
func EditPostForm(id string, values models.PostForm, errs models.PostFormErrors) templ.Component {
	return page("form", "Edit "+values.Title, FormData{
		Heading:      "Edit post",
		Action:       PostPath(id) + "/edit",
		Submit:       "Update",
		DeleteAction: PostPath(id) + "/delete",
		Values:       values,
		Errors:       errs,
	})
}

// Signup renders the signup form. Nothing is stored.
func Signup(username string) templ.Component {
	return page("signup", "Sign up", struct{ Username string }{username})
}

// Error renders an error page for status.
func Error(status int, message string) templ.Component {
	return page("error", fmt.Sprintf("%d", status), struct {
		Status  int
		Message string
	}{status, message})
}
