// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package capture owns the farm draft's location marker and boundary polygon.

The browser map forwards every drawn, edited or deleted shape to a
Controller. The Controller keeps at most one location and one boundary and
tells the map which stale shapes to drop through a Surface:

	buf := capture.NewCommandBuffer()
	ctl := capture.NewController(buf, geocoder)
	ctl.OnShapeCreated(capture.ShapePolygon, "layer-7", geometry)
	resp.Commands = buf.Drain()

Boundaries are kept unclosed and serialized as a GeoJSON Polygon geometry
with a closed ring.

The package also holds the plant count estimate and the bounding box used to
frame the farms map.
*/
package capture
