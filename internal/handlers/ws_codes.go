// internal/handlers/ws_codes.go
package handlers

// RateLimitedError is the close code for a client that kept flooding the
// socket past its rate limit. Bad upgrade requests are refused with an HTTP
// status before the socket opens.
const RateLimitedError = 3001
