package seed

import (
	"context"
	"fmt"
	"log"

	"fittlyfans/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Trainers    int
	Subscribers int
	// PostsPerUser is the number of content items per trainer.
	PostsPerUser int
	// RandSeed makes the generated data reproducible. Zero is random.
	RandSeed int64
	// MaxDays bounds how far back timestamps are spread.
	MaxDays int
	// Force seeds even when the catalog is already present.
	Force bool
	// PasswordCost is the bcrypt cost for the shared password.
	PasswordCost int
}

// DefaultOptions is the data set used by cmd/seed without flags.
func DefaultOptions() Options {
	return Options{
		Trainers:     5,
		Subscribers:  25,
		PostsPerUser: 4,
		MaxDays:      90,
		PasswordCost: bcrypt.DefaultCost,
	}
}

// Summary counts what a run created.
type Summary struct {
	Skipped       bool
	Exercises     int
	Trainers      int
	Subscribers   int
	Routines      int
	Content       int
	Comments      int
	Follows       int
	Payments      int
	Conversations int
}

// Run loads the exercise catalog and builds a demo community on top of it.
// It does nothing when exercises already exist unless opts.Force is set.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	db = db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Exercise{}).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count exercises: %w", err)
	}
	if existing > 0 && !opts.Force {
		log.Printf("seed: %d exercises already present, skipping", existing)
		return &Summary{Skipped: true}, nil
	}

	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	cost := opts.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	f := NewFactory(db, opts.RandSeed, string(hash), opts.MaxDays)
	sum := &Summary{}

	exercises, err := seedCatalog(db, catalog)
	if err != nil {
		return nil, err
	}
	sum.Exercises = len(exercises)
	log.Printf("seed: %d catalog exercises", sum.Exercises)

	trainers := make([]*models.User, 0, opts.Trainers)
	for i := 0; i < opts.Trainers; i++ {
		t, err := f.CreateTrainer()
		if err != nil {
			return nil, fmt.Errorf("create trainer: %w", err)
		}
		trainers = append(trainers, t)
	}
	sum.Trainers = len(trainers)

	subscribers := make([]*models.User, 0, opts.Subscribers)
	for i := 0; i < opts.Subscribers; i++ {
		s, err := f.CreateSubscriber()
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	sum.Subscribers = len(subscribers)
	log.Printf("seed: %d trainers, %d subscribers", sum.Trainers, sum.Subscribers)

	for _, t := range trainers {
		for i := 0; i < 2; i++ {
			if _, err := f.CreateRoutine(t, exercises); err != nil {
				return nil, fmt.Errorf("create routine: %w", err)
			}
			sum.Routines++
		}

		for i := 0; i < opts.PostsPerUser; i++ {
			content, err := f.CreateContent(t)
			if err != nil {
				return nil, fmt.Errorf("create content: %w", err)
			}
			sum.Content++
			for j := 0; j < f.fake.Number(0, 3) && len(subscribers) > 0; j++ {
				author := subscribers[f.fake.Number(0, len(subscribers)-1)]
				if _, err := f.CreateComment(author, content); err != nil {
					return nil, fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
		}
	}

	for i, s := range subscribers {
		if len(trainers) == 0 {
			break
		}
		coach := trainers[i%len(trainers)]
		if err := f.Follow(s, coach); err != nil {
			return nil, fmt.Errorf("follow: %w", err)
		}
		sum.Follows++

		for j := 0; j < f.fake.Number(1, 3); j++ {
			if _, err := f.CreatePayment(s); err != nil {
				return nil, fmt.Errorf("create payment: %w", err)
			}
			sum.Payments++
		}

		if i < len(trainers)*2 {
			if _, err := f.CreateConversation(s, coach, f.fake.Number(2, 8)); err != nil {
				return nil, fmt.Errorf("create conversation: %w", err)
			}
			sum.Conversations++
		}
	}

	log.Printf("seed: %d routines, %d posts, %d comments, %d follows, %d payments, %d conversations",
		sum.Routines, sum.Content, sum.Comments, sum.Follows, sum.Payments, sum.Conversations)
	return sum, nil
}

// seedCatalog inserts missing catalog exercises by name and returns the full
// catalog as stored.
func seedCatalog(db *gorm.DB, catalog []CatalogExercise) ([]models.Exercise, error) {
	out := make([]models.Exercise, 0, len(catalog))
	for _, entry := range catalog {
		ex := entry.model()
		if err := db.Where(models.Exercise{Name: ex.Name}).Attrs(*ex).FirstOrCreate(ex).Error; err != nil {
			return nil, fmt.Errorf("seed exercise %q: %w", entry.Name, err)
		}
		out = append(out, *ex)
	}
	return out, nil
}
