package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	UserKeyPrefix     = "fittlyfans:user:%d"
	ExerciseKeyPrefix = "fittlyfans:exercise:%d"
)

const (
	UserTTL     = 5 * time.Minute
	ExerciseTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ExerciseKey(exerciseID uint) string {
	return fmt.Sprintf(ExerciseKeyPrefix, exerciseID)
}

// keyFamily returns the entity segment of a key, used as a metrics label.
func keyFamily(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) >= 2 {
		return parts[1]
	}
	return "other"
}
