package models

// Subscriber extends a User with fitness goals. ID equals the user's ID.
type Subscriber struct {
	ID           uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Goal         string `gorm:"type:text" json:"goal"`
	FitnessLevel string `gorm:"size:50;index" json:"fitness_level"`

	Name  string `gorm:"->;-:migration" json:"name,omitempty"`
	Email string `gorm:"->;-:migration" json:"email,omitempty"`
	Role  Role   `gorm:"->;-:migration" json:"role,omitempty"`
}

// SubscriberPatch carries optional subscriber fields.
type SubscriberPatch struct {
	Goal         *string `json:"goal"`
	FitnessLevel *string `json:"fitness_level"`
}

func (p SubscriberPatch) IsEmpty() bool {
	return p.Goal == nil && p.FitnessLevel == nil
}

func (p SubscriberPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "goal", p.Goal)
	setIf(cols, "fitness_level", p.FitnessLevel)
	return cols
}

// Trainer extends a User with a specialty. ID equals the user's ID.
type Trainer struct {
	ID             uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Specialty      string `gorm:"size:255" json:"specialty"`
	Certifications string `gorm:"type:text" json:"certifications"`

	Name  string `gorm:"->;-:migration" json:"name,omitempty"`
	Email string `gorm:"->;-:migration" json:"email,omitempty"`
	Role  Role   `gorm:"->;-:migration" json:"role,omitempty"`
}

// TrainerPatch carries optional trainer fields.
type TrainerPatch struct {
	Specialty      *string `json:"specialty"`
	Certifications *string `json:"certifications"`
}

func (p TrainerPatch) IsEmpty() bool {
	return p.Specialty == nil && p.Certifications == nil
}

func (p TrainerPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "specialty", p.Specialty)
	setIf(cols, "certifications", p.Certifications)
	return cols
}

// Experience is a catalog entry describing a kind of fitness experience.
type Experience struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// ExperiencePatch carries optional experience fields.
type ExperiencePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (p ExperiencePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

func (p ExperiencePatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "name", p.Name)
	setIf(cols, "description", p.Description)
	return cols
}
