// Package api implements various handlers for the API routes
package api
