// Command main runs the database seeder for FittlyFans.
package main

import (
	"context"
	"flag"
	"log"

	"fittlyfans/internal/bootstrap"
	"fittlyfans/internal/config"
	"fittlyfans/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	trainers := flag.Int("trainers", defaults.Trainers, "Number of trainers to create")
	subscribers := flag.Int("subscribers", defaults.Subscribers, "Number of subscribers to create")
	posts := flag.Int("posts", defaults.PostsPerUser, "Content items per trainer")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible data (0 = random)")
	force := flag.Bool("force", false, "Seed even if the exercise catalog is already present")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d trainers, %d subscribers, %d posts each, force=%v\n", *trainers, *subscribers, *posts, *force)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	bootstrap.ConfigureLogging(cfg)

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Migrate: true, SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	opts := defaults
	opts.Trainers = *trainers
	opts.Subscribers = *subscribers
	opts.PostsPerUser = *posts
	opts.RandSeed = *randSeed
	opts.Force = *force

	sum, err := seed.Run(ctx, rt.DB, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	if sum.Skipped {
		log.Println("Nothing to do: the database is already seeded. Use -force to add more data.")
		return
	}

	log.Println("All done! Your database is now populated with demo data.")
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
