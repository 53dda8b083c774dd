// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package geocode resolves free-text place names with a Nominatim server.
package geocode
