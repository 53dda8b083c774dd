// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and upstream API types.

# Request Types

Types for parsing JSON sent by the browser:

  - LoginRequest: username, password
  - VerifyOTPRequest: otp
  - NavigateRequest: href of the clicked navigation link
  - FormTabRequest: registration form tab
  - ShapeEventRequest: event, shape_type, id, geometry (raw GeoJSON)
  - SearchRequest: free-text location query
  - FarmForm: raw registration form values

# Response Types

Types for JSON responses:

  - SessionResponse: login step, username, message
  - NavigateResponse: active section, optional redirect and draft
  - DraftResponse: form tab, DraftSummary, notice, surface commands
  - SurfaceCommand: remove / clear / add_point / set_view
  - PlantEstimateResponse, IrrigationFieldsResponse
  - SubmitFarmResponse, SubmitFarmError
  - FarmsResponse: FarmRow list plus MapBounds
  - ErrorResponse: error, message

# Upstream Types

Types exchanged with the farm management REST API:

  - TokenPair: access, refresh
  - UserProfile: id, username, email
  - SoilType: id, name
  - Page[T]: paginated list envelope
  - FarmRequest: registration document with location_lat, location_lng,
    boundary_geojson
  - Farm: registered farm

FlexString and NullFloat tolerate the API returning ids as numbers and
decimals as strings.

# Constants

Login steps:

	StepLogin = "login"
	StepOTP   = "otp"
	StepApp   = "app"

Shape events:

	EventCreated = "created"
	EventEdited  = "edited"
	EventDeleted = "deleted"
*/
package models
