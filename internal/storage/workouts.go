package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/mapty/internal/models"
)

// WorkoutsKey is the slot holding the full workout list.
const WorkoutsKey = "workouts"

// WorkoutStore persists the ordered workout list in a single slot.
type WorkoutStore struct {
	slot Slot
	key  string
	log  *slog.Logger
}

// NewWorkoutStore returns a store over slot using WorkoutsKey.
func NewWorkoutStore(slot Slot, log *slog.Logger) *WorkoutStore {
	if log == nil {
		log = slog.Default()
	}
	return &WorkoutStore{slot: slot, key: WorkoutsKey, log: log}
}

// Save replaces the stored list with workouts.
func (s *WorkoutStore) Save(ctx context.Context, workouts []*models.Workout) error {
	data, err := EncodeWorkouts(workouts)
	if err != nil {
		return err
	}
	if err := s.slot.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("saving workouts: %w", err)
	}
	return nil
}

// Load returns the stored list, or an empty list when nothing is stored.
// A corrupt blob also yields an empty list, together with an error wrapping
// ErrCorruptPersistedState so the caller can surface a warning.
func (s *WorkoutStore) Load(ctx context.Context) ([]*models.Workout, error) {
	data, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, ErrSlotEmpty) {
		return []*models.Workout{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}

	workouts, err := DecodeWorkouts(data)
	if err != nil {
		s.log.Warn("ignoring corrupt workout list", "key", s.key, "bytes", len(data), "error", err)
		return []*models.Workout{}, err
	}
	return workouts, nil
}

// Clear removes the slot.
func (s *WorkoutStore) Clear(ctx context.Context) error {
	if err := s.slot.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	return nil
}

// Close closes the underlying slot.
func (s *WorkoutStore) Close() error {
	return s.slot.Close()
}
