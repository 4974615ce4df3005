package models

import "time"

// ExerciseType classifies an exercise.
type ExerciseType string

const (
	ExerciseCardio      ExerciseType = "cardio"
	ExerciseStrength    ExerciseType = "strength"
	ExerciseFlexibility ExerciseType = "flexibility"
	ExerciseBalance     ExerciseType = "balance"
)

func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseCardio, ExerciseStrength, ExerciseFlexibility, ExerciseBalance:
		return true
	}
	return false
}

// Exercise is a catalog exercise. VideoURL holds either the relative path of
// an uploaded video (videos/<file>) or an external link.
type Exercise struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;not null;index" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	MuscleGroup string       `gorm:"size:50;index" json:"muscle_group"`
	Type        ExerciseType `gorm:"type:varchar(20);default:'strength';index" json:"type"`
	VideoURL    string       `gorm:"size:255" json:"video_url"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ExercisePatch carries optional exercise fields.
type ExercisePatch struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	MuscleGroup *string       `json:"muscle_group"`
	Type        *ExerciseType `json:"type"`
	VideoURL    *string       `json:"video_url"`
}

func (p ExercisePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.MuscleGroup == nil && p.Type == nil && p.VideoURL == nil
}

func (p ExercisePatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "name", p.Name)
	setIf(cols, "description", p.Description)
	setIf(cols, "muscle_group", p.MuscleGroup)
	setIf(cols, "type", p.Type)
	setIf(cols, "video_url", p.VideoURL)
	return cols
}

// Difficulty is a routine's level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Routine is an ordered list of exercises authored by a trainer.
type Routine struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TrainerID         uint       `gorm:"not null;index" json:"trainer_id"`
	Name              string     `gorm:"size:100;not null" json:"name"`
	Description       string     `gorm:"type:text" json:"description"`
	Difficulty        Difficulty `gorm:"type:varchar(20);default:'beginner';index" json:"difficulty"`
	EstimatedDuration int        `gorm:"default:0" json:"estimated_duration"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	TrainerName    string `gorm:"->;-:migration" json:"trainer_name,omitempty"`
	TotalExercises int64  `gorm:"->;-:migration" json:"total_exercises"`
}

// RoutinePatch carries optional routine fields.
type RoutinePatch struct {
	Name              *string     `json:"name"`
	Description       *string     `json:"description"`
	Difficulty        *Difficulty `json:"difficulty"`
	EstimatedDuration *int        `json:"estimated_duration"`
}

func (p RoutinePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Difficulty == nil && p.EstimatedDuration == nil
}

func (p RoutinePatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "name", p.Name)
	setIf(cols, "description", p.Description)
	setIf(cols, "difficulty", p.Difficulty)
	setIf(cols, "estimated_duration", p.EstimatedDuration)
	return cols
}

// RoutineExercise attaches an Exercise to a Routine at a position.
// Duration is in seconds.
type RoutineExercise struct {
	RoutineID  uint `gorm:"primaryKey;autoIncrement:false" json:"routine_id"`
	ExerciseID uint `gorm:"primaryKey;autoIncrement:false;index" json:"exercise_id"`
	Order      int  `gorm:"column:position;not null" json:"order"`
	Sets       int  `gorm:"default:0" json:"sets"`
	Reps       int  `gorm:"default:0" json:"reps"`
	Duration   int  `gorm:"default:0" json:"duration"`

	ExerciseName string       `gorm:"->;-:migration" json:"exercise_name,omitempty"`
	MuscleGroup  string       `gorm:"->;-:migration" json:"muscle_group,omitempty"`
	ExerciseType ExerciseType `gorm:"->;-:migration" json:"exercise_type,omitempty"`
	VideoURL     string       `gorm:"->;-:migration" json:"video_url,omitempty"`
}

// RoutineExercisePatch carries optional link fields.
type RoutineExercisePatch struct {
	Order    *int `json:"order"`
	Sets     *int `json:"sets"`
	Reps     *int `json:"reps"`
	Duration *int `json:"duration"`
}

func (p RoutineExercisePatch) IsEmpty() bool {
	return p.Order == nil && p.Sets == nil && p.Reps == nil && p.Duration == nil
}

func (p RoutineExercisePatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "position", p.Order)
	setIf(cols, "sets", p.Sets)
	setIf(cols, "reps", p.Reps)
	setIf(cols, "duration", p.Duration)
	return cols
}

// OrderItem moves one exercise of a routine to a new position.
type OrderItem struct {
	ExerciseID uint `json:"exercise_id"`
	Order      int  `json:"order"`
}
