// Package ovex exposes the OVEX exchange endpoints on top of the base client.
//
// Every method validates its arguments locally, builds a single request and
// returns the decoded response body. Endpoints that reshape their response
// (fees) return typed values; all others return the decoded JSON as-is.
//
// API Documentation: https://www.ovex.io/api/v2
package ovex
