// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session cookie signing and ID generation utilities.

# Session Cookies

Session cookies carry the session ID plus an HMAC-SHA256 signature:

	value := auth.SignSessionID(sessionID, secret)
	id, err := auth.VerifySessionCookie(value, secret)

The signature is URL-safe base64 encoded without padding. Since it's
deterministic, the same ID and secret always produce the same cookie value,
so tampering is detected without a database lookup. VerifySessionCookie
returns ErrInvalidToken for malformed values and ErrInvalidSignature when the
signature does not match.

# ID Generation

Random hex IDs for session records:

	id, err := auth.GenerateID(24)  // 48 hex characters

# Email Masking

	auth.MaskEmail("jane@example.com") // "j***@example.com"

Used in the OTP step so the full address is not echoed back to the browser.
*/
package auth
