package importer

import (
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
)

// ParseBackup decodes a JSON export. It is the same shape the workout list
// is persisted in, so derived values are recomputed on the way in.
func ParseBackup(data []byte) ([]*models.Workout, error) {
	return storage.DecodeWorkouts(data)
}
