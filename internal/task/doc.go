// Package task provides background processing for card revaluation: an
// in-memory worker pool, a trigger used by the trade and registration
// paths, and a cron-driven sweep that keeps market values fresh.
package task
