package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listPayload struct {
	Posts     []models.Post `json:"posts"`
	PageCount int           `json:"pageCount"`
	Page      int           `json:"page"`
}

func seedFive(t *testing.T, s *Server) {
	t.Helper()
	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := repository.NewPostRepository(s.db, repository.WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}))
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("p%d", i)
		require.NoError(t, repo.Create(context.Background(), &models.Post{ID: id, Title: "Post " + id, Content: "Body " + id}))
	}
}

func ids(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestListPosts_Pagination(t *testing.T) {
	s, app, _ := setupTestServer(t, nil)
	seedFive(t, s)

	tests := []struct {
		query string
		page  int
		want  []string
	}{
		{"/", 1, []string{"p5", "p4"}},
		{"/?page=2", 2, []string{"p3", "p2"}},
		{"/?page=3", 3, []string{"p1"}},
		{"/?page=4", 4, []string{}},
		{"/?page=abc", 1, []string{"p5", "p4"}},
		{"/?page=-2", 1, []string{"p5", "p4"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, app, tt.query, true)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var payload listPayload
			decodeJSON(t, body, &payload)
			assert.Equal(t, 3, payload.PageCount)
			assert.Equal(t, tt.page, payload.Page)
			assert.Equal(t, tt.want, ids(payload.Posts))
		})
	}
}

func TestListPosts_HTML(t *testing.T) {
	s, app, _ := setupTestServer(t, nil)

	resp, body := get(t, app, "/", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Contains(t, body, "No posts here.")

	seedFive(t, s)
	_, body = get(t, app, "/?page=2", false)
	assert.Contains(t, body, `href="/posts/p3"`)
	assert.Contains(t, body, "2024-01-01 00:03:00")
	assert.Contains(t, body, `rel="prev"`)
	assert.Contains(t, body, `rel="next"`)
}

func TestCreateAndReadPost(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, _ := postForm(t, app, "/posts/new", postValues("hello world", "Hello", "# Heading\n\n```go\nfmt.Println(1)\n```"), false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp, body := get(t, app, "/posts/hello%20world", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Hello</h1>")
	assert.Contains(t, body, `<h1 id="heading">Heading</h1>`)
	assert.Contains(t, body, `class="chroma"`)

	resp, body = get(t, app, "/posts/hello%20world", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Post models.Post `json:"post"`
		HTML string      `json:"html"`
	}
	decodeJSON(t, body, &payload)
	assert.Equal(t, "hello world", payload.Post.ID)
	assert.Equal(t, "Hello", payload.Post.Title)
	assert.False(t, payload.Post.CreateAt.IsZero())
	assert.Contains(t, payload.HTML, "Heading")
}

func TestGetPost_RewritesSameSiteLinks(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg := testConfig()
	cfg.SiteURL = "https://blog.test"

	s, err := NewServerWithDeps(cfg, setupSQLiteDB(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	app := s.App()

	content := "[next](https://blog.test/posts/other#top) and [go](https://go.dev)"
	resp, _ := postForm(t, app, "/posts/new", postValues("links", "Links", content), false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := get(t, app, "/posts/links", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/posts/other#top"`)
	assert.NotContains(t, body, `href="https://blog.test/posts/other#top"`)
	assert.Contains(t, body, `href="https://go.dev"`)
	assert.Equal(t, 1, strings.Count(body, `target="_blank"`))
}

func TestCreatePost_Failures(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, body := postForm(t, app, "/posts/new", postValues("s", "", "C"), false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, models.MsgTitleRequired)
	assert.NotContains(t, body, models.MsgSlugRequired)
	assert.Contains(t, body, `value="s"`)

	resp, _ = postForm(t, app, "/posts/new", postValues("taken", "First", "one"), false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = postForm(t, app, "/posts/new", postValues("taken", "Second", "two"), false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, models.MsgSlugTaken)

	resp, body = postForm(t, app, "/posts/new", postValues("taken", "Second", "two"), true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, models.CodeDuplicateID)

	_, body = get(t, app, "/posts/taken", true)
	assert.Contains(t, body, `"title":"First"`)
}

func TestEditPost_Rename(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)
	postForm(t, app, "/posts/new", postValues("a", "Title A", "Body A"), false)

	_, before := get(t, app, "/posts/a", true)
	var original struct {
		Post models.Post `json:"post"`
	}
	decodeJSON(t, before, &original)

	resp, body := get(t, app, "/posts/a/edit", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/posts/a/edit"`)
	assert.Contains(t, body, `action="/posts/a/delete"`)

	resp, _ = postForm(t, app, "/posts/a/edit", postValues("b", "Title B", "Body B"), false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/b", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = get(t, app, "/posts/a", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, after := get(t, app, "/posts/b", true)
	var renamed struct {
		Post models.Post `json:"post"`
	}
	decodeJSON(t, after, &renamed)
	assert.Equal(t, "Title B", renamed.Post.Title)
	assert.Equal(t, "Body B", renamed.Post.Content)
	assert.True(t, original.Post.CreateAt.Equal(renamed.Post.CreateAt))
}

func TestEditPost_Failures(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)
	postForm(t, app, "/posts/new", postValues("a", "A", "a"), false)
	postForm(t, app, "/posts/new", postValues("b", "B", "b"), false)

	resp, _ := get(t, app, "/posts/ghost/edit", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := postForm(t, app, "/posts/ghost/edit", postValues("x", "X", "x"), true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, models.CodeNotFound)

	resp, body = postForm(t, app, "/posts/a/edit", postValues("b", "A2", "a2"), false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, models.MsgSlugTaken)

	resp, body = postForm(t, app, "/posts/a/edit", postValues("a", "A2", ""), false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, models.MsgContentRequired)

	_, body = get(t, app, "/posts/a", true)
	assert.Contains(t, body, `"title":"A"`)
}

func TestDeletePost(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)
	postForm(t, app, "/posts/new", postValues("a", "A", "a"), false)

	resp, _ := postForm(t, app, "/posts/a/delete", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp, body := postForm(t, app, "/posts/a/delete", url.Values{}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, models.CodeNotFound)

	_, body = get(t, app, "/", true)
	var payload listPayload
	decodeJSON(t, body, &payload)
	assert.Empty(t, payload.Posts)
	assert.Zero(t, payload.PageCount)
}

func TestSignup(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, body := get(t, app, "/signup", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="password"`)

	resp, body = postForm(t, app, "/signup", url.Values{"username": {"ada"}, "password": {"secret"}}, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="ada"`)
	assert.NotContains(t, body, "secret")
}

func TestSignup_UnparsableBody(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("username=ada"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	resp, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `name="username"`)
	assert.NotContains(t, body, `value="ada"`)

	req = httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("username=ada"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	resp, body = doRequest(t, app, req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, models.CodeValidation)
}

func TestUnknownRoute(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, body := get(t, app, "/nope/nothing", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")

	resp, body = get(t, app, "/nope/nothing", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, models.CodeNotFound)
}

func TestChromaCSS(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, body := get(t, app, "/static/chroma.css", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/css")
	assert.Contains(t, body, ".chroma")
}

func TestHealthChecks(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		_, app, _ := setupTestServer(t, nil)

		resp, _ := get(t, app, "/health/live", false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := get(t, app, "/health/ready", false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"redis":"unavailable"`)
		assert.Contains(t, body, `"database":"healthy"`)
	})

	t.Run("with redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		_, app, _ := setupTestServer(t, rdb)

		resp, body := get(t, app, "/health", false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"redis":"healthy"`)

		mr.Close()
		resp, body = get(t, app, "/health/ready", false)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Contains(t, body, `"redis":"unhealthy"`)
	})
}

func TestRequestIDAndTraceHeaders(t *testing.T) {
	_, app, _ := setupTestServer(t, nil)

	resp, _ := get(t, app, "/health/live", false)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}
