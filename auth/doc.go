// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Session Tokens

Session tokens use HMAC-SHA256 to create deterministic, verifiable tokens:

	token := auth.SessionToken(userID, salt)
	err := auth.ValidateSessionToken(userID, token, salt)

The token is URL-safe base64 encoded without padding. Since it's
deterministic, the same user ID and salt always produce the same token.
This allows validation without storing the token in the database: login by
name hands the client its token, and every authenticated request carries
the X-User-ID and X-Session-Token headers.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving analytics and rate limiting:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
