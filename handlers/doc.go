// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers of the farmdesk console.

# Handler Types

Each handler is a struct built by a constructor over its dependencies:

  - AuthHandler: password + OTP login, logout and session restore
  - FarmHandler: farm registration form, map drawing, listing
  - NavHandler: sidebar navigation

For example:

	authHandler := handlers.NewAuthHandler(store, registry, api)
	farmHandler := handlers.NewFarmHandler(registry, api)

All of them expect middleware.WithSession in front.

# Login Flow

	POST /api/auth/login   → Login (username/password, mails an OTP)
	POST /api/auth/verify  → Verify (OTP, stores tokens)
	POST /api/auth/back    → Back (abandon the OTP step)
	POST /api/auth/logout  → Logout
	GET  /api/auth/session → Session (which screen to show on load)

# Farm Drawing

The browser map posts every created, edited or deleted shape to ShapeEvent.
Responses carry the draft summary plus surface commands (remove, clear,
add_point, set_view) the page applies to its map, in order.

	POST /api/farms/draft/shapes → ShapeEvent
	POST /api/farms/draft/search → Search (geocode and place the marker)
	POST /api/farms              → Submit

Login, OTP verification, location search and submission are refused with
409 while the same request is still running for the session.
*/
package handlers
