// Package domain defines the core business entities of the card marketplace:
// users with budgets and roles, tradable cards with market state, and the
// per-request caller identity. Entities validate themselves; persistence and
// orchestration live in other layers.
package domain
