package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"fittlyfans/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yml
var catalogYAML []byte

// CatalogExercise is one entry of the embedded exercise catalog.
type CatalogExercise struct {
	Name        string              `yaml:"name"`
	MuscleGroup string              `yaml:"muscle_group"`
	Type        models.ExerciseType `yaml:"type"`
	Description string              `yaml:"description"`
}

type catalogFile struct {
	Exercises []CatalogExercise `yaml:"exercises"`
}

// LoadCatalog parses the embedded exercise catalog.
func LoadCatalog() ([]CatalogExercise, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a catalog document and rejects unnamed or untyped
// entries and duplicate names.
func ParseCatalog(data []byte) ([]CatalogExercise, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse exercise catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Exercises))
	for i, ex := range file.Exercises {
		name := strings.TrimSpace(ex.Name)
		if name == "" {
			return nil, fmt.Errorf("exercise catalog entry %d has no name", i)
		}
		if !ex.Type.Valid() {
			return nil, fmt.Errorf("exercise %q has invalid type %q", name, ex.Type)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("exercise %q listed twice", name)
		}
		seen[key] = struct{}{}
		file.Exercises[i].Name = name
	}
	return file.Exercises, nil
}

func (c CatalogExercise) model() *models.Exercise {
	return &models.Exercise{
		Name:        c.Name,
		Description: strings.TrimSpace(c.Description),
		MuscleGroup: strings.TrimSpace(c.MuscleGroup),
		Type:        c.Type,
	}
}
