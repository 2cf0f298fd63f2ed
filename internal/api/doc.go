// Package api adapts HTTP requests to the game services: it decodes and
// validates request bodies, maps service errors to status codes and reason
// codes, and streams core images.
package api
