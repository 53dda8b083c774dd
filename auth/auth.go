// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrInvalidToken     = errors.New("invalid token format")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// sign creates an HMAC signature for a session ID.
// Deterministic, so the cookie can be verified without a lookup
func sign(sessionID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner cookies
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// SignSessionID returns the cookie value for a session: "<id>.<signature>"
func SignSessionID(sessionID, secret string) string {
	return sessionID + "." + sign(sessionID, secret)
}

// VerifySessionCookie checks a cookie value produced by SignSessionID and
// returns the session ID it carries
func VerifySessionCookie(value, secret string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" || sig == "" {
		return "", ErrInvalidToken
	}
	expected := sign(id, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidSignature
	}
	return id, nil
}

// MaskEmail hides most of the local part of an address, e.g. "j***@example.com".
// Used when telling the user where the OTP was sent
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
