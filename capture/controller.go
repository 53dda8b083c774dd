// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"github.com/danielhkuo/farmdesk/geocode"
	"github.com/danielhkuo/farmdesk/models"
)

// ShapeType tags a drawn shape
type ShapeType string

const (
	ShapePoint   ShapeType = "point"
	ShapePolygon ShapeType = "polygon"
)

// SearchZoom is the zoom level used after a successful location search
const SearchZoom = 13

const (
	noCoordinates = "Not set"
	noVertices    = "0 points"
)

var (
	ErrUnknownShape     = errors.New("unknown shape type")
	ErrEmptyQuery       = errors.New("empty search query")
	ErrNoResults        = errors.New("no locations found")
	ErrLookupFailed     = errors.New("location lookup failed")
	ErrLocationRequired = errors.New("farm location is required")
	ErrDraftReset       = errors.New("draft was reset during the lookup")
)

// Geocoder resolves free text to ordered candidates
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Place, error)
}

// Submission holds the location fields of a farm registration
type Submission struct {
	LocationLat     float64
	LocationLng     float64
	BoundaryGeoJSON string
}

// Controller keeps the farm draft's location and boundary in sync with the
// drawing surface. It holds at most one of each.
type Controller struct {
	mu       sync.Mutex
	surface  Surface
	geocoder Geocoder

	location   *orb.Point
	locationID ShapeID

	boundary     orb.Ring
	boundaryID   ShapeID
	boundaryJSON string

	// bumped by Reset; a lookup started under an older value is dropped
	gen uint64
}

func NewController(surface Surface, geocoder Geocoder) *Controller {
	return &Controller{surface: surface, geocoder: geocoder}
}

// OnShapeCreated records a newly drawn shape and removes the shape it
// replaces from the surface. Malformed geometry leaves the draft unchanged.
func (c *Controller) OnShapeCreated(t ShapeType, id ShapeID, geometry []byte) error {
	switch t {
	case ShapePoint:
		pt, err := parsePoint(geometry)
		if err != nil {
			slog.Warn("dropping location geometry", "shape_id", id, "error", err)
			return err
		}
		c.mu.Lock()
		c.placeLocation(pt, id)
		c.mu.Unlock()
		return nil

	case ShapePolygon:
		ring, encoded, err := decodeBoundary(geometry)
		if err != nil {
			slog.Warn("dropping boundary geometry", "shape_id", id, "error", err)
			return err
		}
		c.mu.Lock()
		if c.boundaryID != "" && c.boundaryID != id {
			c.surface.Remove(c.boundaryID)
		}
		c.boundary, c.boundaryID, c.boundaryJSON = ring, id, encoded
		c.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownShape, t)
}

// OnShapeEdited updates the draft from an edited shape. Edits to shapes the
// draft does not reference are ignored.
func (c *Controller) OnShapeEdited(t ShapeType, id ShapeID, geometry []byte) error {
	switch t {
	case ShapePoint:
		pt, err := parsePoint(geometry)
		if err != nil {
			slog.Warn("dropping edited location", "shape_id", id, "error", err)
			return err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.location != nil && c.locationID == id {
			c.location = &pt
		}
		return nil

	case ShapePolygon:
		ring, encoded, err := decodeBoundary(geometry)
		if err != nil {
			slog.Warn("dropping edited boundary", "shape_id", id, "error", err)
			return err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.boundary != nil && c.boundaryID == id {
			c.boundary, c.boundaryJSON = ring, encoded
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownShape, t)
}

// OnShapeDeleted clears the field the deleted shape was bound to
func (c *Controller) OnShapeDeleted(t ShapeType, id ShapeID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch t {
	case ShapePoint:
		if c.locationID == id {
			c.location, c.locationID = nil, ""
		}
		return nil
	case ShapePolygon:
		if c.boundaryID == id {
			c.boundary, c.boundaryID, c.boundaryJSON = nil, "", ""
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownShape, t)
}

// SearchAndPlace geocodes query and places the location marker on the first
// candidate, recentering the surface on it. The draft is unchanged on any error,
// including ErrDraftReset when the draft was reset while the lookup ran.
func (c *Controller) SearchAndPlace(ctx context.Context, query string) (geocode.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return geocode.Place{}, ErrEmptyQuery
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	places, err := c.geocoder.Search(ctx, query)
	if err != nil {
		slog.Error("location search failed", "query", query, "error", err)
		return geocode.Place{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if len(places) == 0 {
		return geocode.Place{}, ErrNoResults
	}

	best := places[0]
	pt := orb.Point{best.Lon, best.Lat}
	if !validPoint(pt) {
		return geocode.Place{}, fmt.Errorf("%w: candidate out of range", ErrLookupFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		slog.Info("dropping location lookup for a reset draft", "query", query)
		return geocode.Place{}, ErrDraftReset
	}
	id := c.surface.AddPoint(pt)
	c.placeLocation(pt, id)
	c.surface.SetView(pt, SearchZoom)
	return best, nil
}

// placeLocation must be called with c.mu held
func (c *Controller) placeLocation(pt orb.Point, id ShapeID) {
	if c.locationID != "" && c.locationID != id {
		c.surface.Remove(c.locationID)
	}
	c.location, c.locationID = &pt, id
}

// Reset empties the draft and the surface
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location, c.locationID = nil, ""
	c.boundary, c.boundaryID, c.boundaryJSON = nil, "", ""
	c.gen++
	c.surface.Clear()
}

// ToSubmission returns the location fields for a farm registration
func (c *Controller) ToSubmission() (Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.location == nil {
		return Submission{}, ErrLocationRequired
	}
	return Submission{
		LocationLat:     c.location.Lat(),
		LocationLng:     c.location.Lon(),
		BoundaryGeoJSON: c.boundaryJSON,
	}, nil
}

// Summary renders the draft for display, hidden fields included
func (c *Controller) Summary() models.DraftSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := models.DraftSummary{
		Coordinates:     noCoordinates,
		Vertices:        noVertices,
		BoundaryGeoJSON: c.boundaryJSON,
	}
	if c.location != nil {
		lat, lng := c.location.Lat(), c.location.Lon()
		s.Coordinates = fmt.Sprintf("Lat: %.6f, Lng: %.6f", lat, lng)
		s.LocationLat = strconv.FormatFloat(lat, 'f', -1, 64)
		s.LocationLng = strconv.FormatFloat(lng, 'f', -1, 64)
	}
	if c.boundary != nil {
		s.Vertices = fmt.Sprintf("%d points", len(c.boundary))
	}
	return s
}

func decodeBoundary(geometry []byte) (orb.Ring, string, error) {
	ring, err := parseBoundary(geometry)
	if err != nil {
		return nil, "", err
	}
	encoded, err := boundaryGeoJSON(ring)
	if err != nil {
		return nil, "", err
	}
	return ring, encoded, nil
}

// Message maps a controller error to the text shown to the user
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a location to search for."
	case errors.Is(err, ErrNoResults):
		return "No locations found with that name. Please try a different search."
	case errors.Is(err, ErrLookupFailed):
		return "Failed to search for location. Please try again later."
	case errors.Is(err, ErrDraftReset):
		return "The form was cleared before the search finished. Please search again."
	case errors.Is(err, ErrLocationRequired):
		return "Please set the main farm location by placing a marker on the map."
	case errors.Is(err, ErrMalformedGeometry):
		return "The drawn shape could not be read. Please draw it again."
	case errors.Is(err, ErrUnknownShape):
		return "Only markers and polygons can be drawn."
	}
	return "Something went wrong. Please try again later."
}
