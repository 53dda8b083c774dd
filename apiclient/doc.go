// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the typed client for the farm management REST API.

# Requests

Every call goes through Client.Do, which encodes the body as JSON, adds
"Authorization: Bearer <token>" when a token is given, and decodes the
response:

	api := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor)
	tokens, err := api.ObtainToken(ctx, username, password)

Calls are never retried. A gobreaker circuit breaker short-circuits calls
after repeated network or 5xx failures.

# Errors

Failures are returned as *Error with a Kind:

	KindNetwork       transport failure or open breaker
	KindUnauthorized  HTTP 401
	KindValidation    HTTP 400 with a field -> messages body
	KindRejected      any other 4xx
	KindServer        5xx
	KindDecode        unreadable success body

Detail and Code carry the body's "detail" (or "error") and "code" keys so
callers can branch on codes rather than message wording:

	if apiErr, ok := apiclient.AsError(err); ok && apiErr.Code == "otp_expired" {
		...
	}

ValidationText renders Fields for display.
*/
package apiclient
