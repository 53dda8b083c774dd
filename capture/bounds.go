// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/danielhkuo/farmdesk/models"
)

// boundsPadding is the fraction each side of a bound is grown by
const boundsPadding = 0.1

// MapBounds returns the box that frames every farm's location and boundary
// on the farms map. It reports false when no farm has usable coordinates.
func MapBounds(farms []models.Farm) (models.MapBounds, bool) {
	var (
		box   orb.Bound
		found bool
	)
	extend := func(b orb.Bound) {
		if !found {
			box, found = b, true
			return
		}
		box = box.Union(b)
	}

	for _, f := range farms {
		if f.LocationLat.Valid && f.LocationLng.Valid {
			pt := orb.Point{f.LocationLng.Float64, f.LocationLat.Float64}
			extend(pt.Bound())
		}

		if f.BoundaryGeoJSON == "" {
			continue
		}
		g, err := geojson.UnmarshalGeometry([]byte(f.BoundaryGeoJSON))
		if err != nil {
			slog.Warn("skipping unreadable farm boundary", "farm_id", string(f.ID), "error", err)
			continue
		}
		poly, ok := g.Geometry().(orb.Polygon)
		if !ok || len(poly) == 0 || len(poly[0]) == 0 {
			continue
		}
		extend(pad(poly[0].Bound()))
	}

	if !found {
		return models.MapBounds{}, false
	}
	box = pad(box)
	return models.MapBounds{
		South: box.Min.Lat(),
		West:  box.Min.Lon(),
		North: box.Max.Lat(),
		East:  box.Max.Lon(),
	}, true
}

// pad grows b by boundsPadding of its height and width on every side
func pad(b orb.Bound) orb.Bound {
	dLat := (b.Max.Lat() - b.Min.Lat()) * boundsPadding
	dLon := (b.Max.Lon() - b.Min.Lon()) * boundsPadding
	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - dLon, b.Min.Lat() - dLat},
		Max: orb.Point{b.Max.Lon() + dLon, b.Max.Lat() + dLat},
	}
}
