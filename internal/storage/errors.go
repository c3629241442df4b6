package storage

import "errors"

// ErrSlotEmpty is returned by Slot.Get when the key holds no value.
var ErrSlotEmpty = errors.New("slot is empty")

// ErrCorruptPersistedState is returned when the stored blob cannot be
// decoded into workouts.
var ErrCorruptPersistedState = errors.New("corrupt persisted state")
