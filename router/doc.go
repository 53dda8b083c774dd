// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the farmdesk console.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints, plus the
workspace registry the server sweeps for idle sessions:

	mux, registry := router.NewRouter(db, cfg)

Every /api route runs behind request logging and Prometheus metrics. All but
the plant estimate and irrigation field lookups also run behind the session
cookie middleware, so those two never create a session.

# Endpoints

Operations:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics

Login:

	GET  /api/auth/session - Current step (login, otp or app)
	POST /api/auth/login   - Username/password, sends an OTP
	POST /api/auth/verify  - Complete login with the OTP
	POST /api/auth/back    - Return from the OTP step
	POST /api/auth/logout  - Sign out

Navigation:

	POST /api/nav - Switch section ("#farms" redirects to the farms page)

Farms:

	GET  /api/farms                   - List, ?q= filters rows and bounds
	POST /api/farms                   - Register the drafted farm
	GET  /api/farms/soil-types        - Soil type choices
	GET  /api/farms/plants            - Plant estimate for spacing and area
	GET  /api/farms/irrigation-fields - Sub-fields for an irrigation type

Draft (registration form and map):

	POST /api/farms/form          - Start a new form
	POST /api/farms/form/tab      - Switch tab ("next", "prev" or a name)
	GET  /api/farms/draft         - Current draft
	POST /api/farms/draft/shapes  - Map shape created/edited/deleted
	POST /api/farms/draft/search  - Geocode and place the farm marker
	POST /api/farms/draft/reset   - Clear the map and draft
*/
package router
