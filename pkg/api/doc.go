// Package api holds the request and response messages of the catalog.v1
// services. Messages are plain structs encoded as JSON; money travels as
// decimal strings and dates as YYYY-MM-DD.
package api
