// Package api contains the HTTP handlers, request/response models, and
// error mapping for the card market REST interface.
package api
