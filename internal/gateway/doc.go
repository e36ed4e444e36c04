// Package gateway is the single point of outbound HTTP communication with the
// billing API. It attaches the freshest bearer token to every request, decodes
// the API's error envelope into *APIError, and deliberately adds no retry or
// backoff policy on top of the transport timeout.
package gateway
