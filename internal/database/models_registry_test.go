package database

import (
	"testing"

	modelspkg "fittlyfans/internal/models"

	"github.com/stretchr/testify/require"
)

func TestAllModels_IncludesJoinAndThreadTables(t *testing.T) {
	var hasLink, hasMessage bool
	for _, model := range AllModels() {
		switch model.(type) {
		case *modelspkg.RoutineExercise:
			hasLink = true
		case *modelspkg.Message:
			hasMessage = true
		}
	}
	require.True(t, hasLink, "AllModels should include RoutineExercise")
	require.True(t, hasMessage, "AllModels should include Message")
}
