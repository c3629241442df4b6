// Package geo provides one-shot position lookups for map start-up.
package geo

import (
	"context"
	"errors"

	"github.com/claude/mapty/internal/models"
)

// ErrUnavailable is returned when no position can be obtained.
var ErrUnavailable = errors.New("could not get your current position")

// Locator answers a single current-position request. There is no retry and
// no continuous tracking.
type Locator interface {
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (models.Coordinates, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}

// Fixed returns a Locator that always succeeds with c, e.g. the position the
// browser reported.
func Fixed(c models.Coordinates) Locator {
	return LocatorFunc(func(ctx context.Context) (models.Coordinates, error) {
		if err := ctx.Err(); err != nil {
			return models.Coordinates{}, err
		}
		if err := models.ValidateCoordinates(c.Lat, c.Lng); err != nil {
			return models.Coordinates{}, errors.Join(ErrUnavailable, err)
		}
		return c, nil
	})
}

// Denied returns a Locator that always fails, e.g. when the browser refused
// or lacks geolocation. reason may be empty.
func Denied(reason string) Locator {
	return LocatorFunc(func(context.Context) (models.Coordinates, error) {
		if reason == "" {
			return models.Coordinates{}, ErrUnavailable
		}
		return models.Coordinates{}, errors.Join(ErrUnavailable, errors.New(reason))
	})
}
