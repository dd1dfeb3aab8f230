// Package seed fills the post table with demo content or fixture files for
// development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Seeder creates posts through the repository so every seeded row passes the
// same validation and timestamping as posts created over HTTP.
type Seeder struct {
	repo  repository.PostRepository
	faker *gofakeit.Faker
}

// NewSeeder returns a Seeder. A zero seed picks a time based one.
func NewSeeder(repo repository.PostRepository, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{repo: repo, faker: gofakeit.New(seed)}
}

// BuildDemoPost constructs a post with generated markdown content without persisting it.
func (s *Seeder) BuildDemoPost() *models.Post {
	title := strings.TrimSuffix(s.faker.Sentence(5), ".")

	var b strings.Builder
	b.WriteString(s.faker.Paragraph(1, 3, 12, "\n"))
	b.WriteString("\n\n## ")
	b.WriteString(strings.TrimSuffix(s.faker.Sentence(3), "."))
	b.WriteString("\n\n")
	for range 3 {
		b.WriteString("- ")
		b.WriteString(s.faker.HackerPhrase())
		b.WriteString("\n")
	}
	b.WriteString("\n```go\n")
	fmt.Fprintf(&b, "func main() {\n\tfmt.Println(%q)\n}\n", s.faker.HipsterSentence(4))
	b.WriteString("```\n\n")
	b.WriteString(s.faker.Paragraph(1, 2, 10, "\n"))

	return &models.Post{
		ID:      Slugify(title) + "-" + uuid.NewString()[:8],
		Title:   title,
		Content: b.String(),
	}
}

// Demo persists n generated posts and returns them in creation order.
func (s *Seeder) Demo(ctx context.Context, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := s.BuildDemoPost()
		if err := s.repo.Create(ctx, post); err != nil {
			return posts, fmt.Errorf("create demo post %q: %w", post.ID, err)
		}
		posts = append(posts, post)
	}

	middleware.Logger.InfoContext(ctx, "seeded demo posts", slog.Int("count", len(posts)))
	return posts, nil
}

// Fixtures creates each fixture post whose slug is not taken yet. It returns
// how many posts were created, so running it twice is harmless.
func (s *Seeder) Fixtures(ctx context.Context, fixtures []Fixture) (int, error) {
	created := 0
	for _, f := range fixtures {
		post := f.Post()
		err := s.repo.Create(ctx, post)
		switch {
		case err == nil:
			created++
		case models.HasCode(err, models.CodeDuplicateID):
			middleware.Logger.DebugContext(ctx, "fixture already present", slog.String("slug", post.ID))
		default:
			return created, fmt.Errorf("create fixture %q: %w", post.ID, err)
		}
	}

	middleware.Logger.InfoContext(ctx, "loaded fixtures", slog.Int("created", created), slog.Int("total", len(fixtures)))
	return created, nil
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return "post"
	}
	return b.String()
}
