package database

import "fittlyfans/internal/models"

// AllModels returns the authoritative set of schema-managed GORM models.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Subscriber{},
		&models.Trainer{},
		&models.Experience{},
		&models.Exercise{},
		&models.Routine{},
		&models.RoutineExercise{},
		&models.Content{},
		&models.Comment{},
		&models.Subscription{},
		&models.Payment{},
		&models.Conversation{},
		&models.Message{},
	}
}
