package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/mapty/internal/geojson"
	"github.com/mark3labs/mcp-go/mcp"
)

// allTime spans every workout a list could hold.
var allTime = [2]time.Time{time.Unix(0, 0), time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}

func (h *handlers) allWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListWorkouts(ctx, allTime[0], allTime[1], "")
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) workoutsGeoJSON(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListWorkouts(ctx, allTime[0], allTime[1], "")
	if err != nil {
		return nil, err
	}

	data, err := geojson.FromWorkouts(workouts).ToJSON()
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/geo+json",
			Text:     string(data),
		},
	}, nil
}
