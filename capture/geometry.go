// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrMalformedGeometry = errors.New("malformed geometry")

// decodeGeometry accepts a bare GeoJSON geometry or a Feature wrapping one
// (what the browser map library produces for a drawn layer)
func decodeGeometry(raw []byte) (orb.Geometry, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedGeometry)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}

	if head.Type == "Feature" {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
		}
		if f.Geometry == nil {
			return nil, fmt.Errorf("%w: feature without geometry", ErrMalformedGeometry)
		}
		return f.Geometry, nil
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	if g.Geometry() == nil {
		return nil, fmt.Errorf("%w: no coordinates", ErrMalformedGeometry)
	}
	return g.Geometry(), nil
}

func validPoint(p orb.Point) bool {
	lng, lat := p[0], p[1]
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// parsePoint decodes a location marker geometry
func parsePoint(raw []byte) (orb.Point, error) {
	g, err := decodeGeometry(raw)
	if err != nil {
		return orb.Point{}, err
	}
	p, ok := g.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("%w: want Point, got %s", ErrMalformedGeometry, g.GeoJSONType())
	}
	if !validPoint(p) {
		return orb.Point{}, fmt.Errorf("%w: coordinates out of range", ErrMalformedGeometry)
	}
	return p, nil
}

// parseBoundary decodes a boundary polygon and returns its first ring with
// the closing vertex removed
func parseBoundary(raw []byte) (orb.Ring, error) {
	g, err := decodeGeometry(raw)
	if err != nil {
		return nil, err
	}
	poly, ok := g.(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: want Polygon, got %s", ErrMalformedGeometry, g.GeoJSONType())
	}
	if len(poly) == 0 {
		return nil, fmt.Errorf("%w: polygon without rings", ErrMalformedGeometry)
	}

	ring := openRing(poly[0])
	distinct := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		if !validPoint(p) {
			return nil, fmt.Errorf("%w: coordinates out of range", ErrMalformedGeometry)
		}
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 distinct vertices, got %d", ErrMalformedGeometry, len(distinct))
	}
	return ring, nil
}

// openRing copies r without its closing vertex
func openRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	copy(out, r)
	if len(out) > 1 && out[0].Equal(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// boundaryGeoJSON serializes an open ring as a GeoJSON Polygon geometry.
// GeoJSON rings are closed, so the first vertex is repeated at the end
func boundaryGeoJSON(ring orb.Ring) (string, error) {
	closed := make(orb.Ring, 0, len(ring)+1)
	closed = append(closed, ring...)
	closed = append(closed, ring[0])

	data, err := json.Marshal(geojson.NewGeometry(orb.Polygon{closed}))
	if err != nil {
		return "", fmt.Errorf("encode boundary: %w", err)
	}
	return string(data), nil
}
