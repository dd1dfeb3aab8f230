// Command seed fills the database with demo posts or a YAML fixture file.
package main

import (
	"context"
	"flag"
	"log"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/repository"
	"inkpost/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 10, "Number of demo posts to generate")
	fixtures := flag.String("fixtures", "", "Load posts from a YAML fixture file instead of generating them")
	randSeed := flag.Int64("seed", 0, "Seed for the fake data generator (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	s := seed.NewSeeder(repository.NewPostRepository(db), *randSeed)

	if *fixtures != "" {
		items, err := seed.LoadFixturesFile(*fixtures)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		created, err := s.Fixtures(ctx, items)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Created %d of %d fixture posts", created, len(items))
		return
	}

	posts, err := s.Demo(ctx, *numPosts)
	if err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}
	log.Printf("Created %d demo posts", len(posts))
}
