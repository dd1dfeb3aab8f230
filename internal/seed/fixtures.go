package seed

import (
	"fmt"
	"io"
	"os"

	"inkpost/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is one post entry in a fixture file.
type Fixture struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Post converts the fixture into a post ready for creation.
func (f Fixture) Post() *models.Post {
	return &models.Post{ID: f.Slug, Title: f.Title, Content: f.Content}
}

type fixtureFile struct {
	Posts []Fixture `yaml:"posts"`
}

// LoadFixtures decodes a YAML document of the form
//
//	posts:
//	  - slug: hello-world
//	    title: Hello
//	    content: "# Hi"
func LoadFixtures(r io.Reader) ([]Fixture, error) {
	var doc fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return doc.Posts, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) ([]Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	return LoadFixtures(f)
}
