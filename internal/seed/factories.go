// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math"
	"strings"
	"time"

	"fittlyfans/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every seeded account.
const DefaultPassword = "password123"

var (
	specialties = []string{
		"Fuerza", "Hipertrofia", "Crossfit", "Yoga", "Pilates",
		"Running", "Movilidad", "Nutricion deportiva", "Calistenia",
	}
	certifications = []string{"NSCA-CSCS", "ACE", "NASM-CPT", "ISSA", "RYT-200"}
	goals          = []string{
		"Perder grasa", "Ganar masa muscular", "Correr un 10k",
		"Mejorar la movilidad", "Volver a entrenar tras una lesion",
	}
	fitnessLevels = []string{"principiante", "intermedio", "avanzado"}
	difficulties  = []models.Difficulty{models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced}
	methods       = []models.PaymentMethod{models.MethodCard, models.MethodPaypal, models.MethodTransfer}
	statuses      = []models.PaymentStatus{models.PaymentCompleted, models.PaymentCompleted, models.PaymentPending, models.PaymentFailed}
)

// Factory builds domain entities with gofakeit and persists them.
type Factory struct {
	db       *gorm.DB
	fake     *gofakeit.Faker
	password string
	maxDays  int
	seq      int
}

// NewFactory creates a Factory bound to db. passwordHash is stored on every
// user it creates. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, passwordHash string, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:       db,
		fake:     gofakeit.New(seed),
		password: passwordHash,
		maxDays:  maxDays,
	}
}

// pastTime spreads timestamps over the last maxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.fake.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// CreateUser persists a user with a unique gofakeit email.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	person := f.fake.Person()
	user := &models.User{
		Name:     person.FirstName + " " + person.LastName,
		Email:    strings.ToLower(fmt.Sprintf("%s.%s%d@fittlyfans.dev", person.FirstName, person.LastName, f.seq)),
		Password: f.password,
		Role:     role,
	}
	user.Email = strings.ReplaceAll(user.Email, " ", "")
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTrainer persists a trainer account with its profile.
func (f *Factory) CreateTrainer() (*models.User, error) {
	user, err := f.CreateUser(models.RoleTrainer)
	if err != nil {
		return nil, err
	}
	trainer := &models.Trainer{
		ID:             user.ID,
		Specialty:      f.fake.RandomString(specialties),
		Certifications: f.fake.RandomString(certifications),
	}
	if err := f.db.Create(trainer).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSubscriber persists a subscriber account with its profile.
func (f *Factory) CreateSubscriber() (*models.User, error) {
	user, err := f.CreateUser(models.RoleSubscriber)
	if err != nil {
		return nil, err
	}
	sub := &models.Subscriber{
		ID:           user.ID,
		Goal:         f.fake.RandomString(goals),
		FitnessLevel: f.fake.RandomString(fitnessLevels),
	}
	if err := f.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateRoutine persists a routine for trainer linking a random selection
// of exercises in order.
func (f *Factory) CreateRoutine(trainer *models.User, exercises []models.Exercise) (*models.Routine, error) {
	routine := &models.Routine{
		TrainerID:         trainer.ID,
		Name:              fmt.Sprintf("%s %s", f.fake.RandomString([]string{"Rutina", "Plan", "Circuito"}), f.fake.Adjective()),
		Description:       f.fake.Sentence(12),
		Difficulty:        difficulties[f.fake.Number(0, len(difficulties)-1)],
		EstimatedDuration: f.fake.Number(3, 12) * 5,
	}

	return routine, f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(routine).Error; err != nil {
			return err
		}
		if len(exercises) == 0 {
			return nil
		}
		picked := f.fake.Number(1, min(len(exercises), 6))
		idx := make([]int, len(exercises))
		for i := range idx {
			idx[i] = i
		}
		f.fake.ShuffleInts(idx)
		for pos, i := range idx[:picked] {
			ex := exercises[i]
			link := &models.RoutineExercise{
				RoutineID:  routine.ID,
				ExerciseID: ex.ID,
				Order:      pos + 1,
			}
			if ex.Type == models.ExerciseStrength {
				link.Sets = f.fake.Number(3, 5)
				link.Reps = f.fake.Number(6, 15)
			} else {
				link.Duration = f.fake.Number(2, 12) * 15
			}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateContent persists a post by author. Seeded media posts point at
// external placeholder URLs.
func (f *Factory) CreateContent(author *models.User) (*models.Content, error) {
	content := &models.Content{
		UserID:      author.ID,
		Description: f.fake.Paragraph(1, 2, 10, " "),
		PublishedAt: f.pastTime(),
	}
	switch f.fake.Number(0, 2) {
	case 0:
		content.Type = models.ContentImage
		content.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.fake.UUID())
	case 1:
		content.Type = models.ContentVideo
		content.MediaURL = fmt.Sprintf("https://videos.fittlyfans.dev/%s.mp4", f.fake.UUID())
	default:
		content.Type = models.ContentText
	}
	if err := f.db.Create(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

// CreateComment persists a comment by user on content.
func (f *Factory) CreateComment(user *models.User, content *models.Content) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:    user.ID,
		ContentID: content.ID,
		Text:      f.fake.Sentence(8),
		CreatedAt: content.PublishedAt.Add(time.Duration(f.fake.Number(1, 600)) * time.Minute),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Follow persists a follow edge. Existing edges are left untouched.
func (f *Factory) Follow(follower, followed *models.User) error {
	if follower.ID == followed.ID {
		return nil
	}
	sub := models.Subscription{FollowerID: follower.ID, FollowedID: followed.ID, CreatedAt: f.pastTime()}
	return f.db.Where(models.Subscription{FollowerID: follower.ID, FollowedID: followed.ID}).
		Attrs(sub).
		FirstOrCreate(&sub).Error
}

// CreatePayment persists a payment by subscriber with a random status.
func (f *Factory) CreatePayment(subscriber *models.User) (*models.Payment, error) {
	payment := &models.Payment{
		SubscriberID: subscriber.ID,
		Amount:       math.Round(f.fake.Price(4.99, 59.99)*100) / 100,
		Method:       methods[f.fake.Number(0, len(methods)-1)],
		Status:       statuses[f.fake.Number(0, len(statuses)-1)],
		Description:  "Suscripcion " + f.fake.RandomString([]string{"mensual", "trimestral", "anual"}),
		PaidAt:       f.pastTime(),
	}
	if err := f.db.Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateConversation persists a conversation with n alternating messages.
// The last message is copied onto the conversation.
func (f *Factory) CreateConversation(subscriber, trainer *models.User, n int) (*models.Conversation, error) {
	conv := &models.Conversation{
		SubscriberID: subscriber.ID,
		TrainerID:    trainer.ID,
		State:        models.ConversationActive,
		CreatedAt:    f.pastTime(),
	}
	return conv, f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		sentAt := conv.CreatedAt
		for i := 0; i < n; i++ {
			sender := subscriber.ID
			if i%2 == 1 {
				sender = trainer.ID
			}
			sentAt = sentAt.Add(time.Duration(f.fake.Number(1, 120)) * time.Minute)
			msg := &models.Message{
				ConversationID: conv.ID,
				SenderID:       sender,
				Text:           f.fake.Sentence(f.fake.Number(3, 14)),
				Read:           i < n-1,
				SentAt:         sentAt,
			}
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
			conv.LastMessage = msg.Text
			conv.LastMessageAt = &msg.SentAt
		}
		if n == 0 {
			return nil
		}
		return tx.Model(conv).Updates(map[string]any{
			"last_message":    conv.LastMessage,
			"last_message_at": conv.LastMessageAt,
		}).Error
	})
}
