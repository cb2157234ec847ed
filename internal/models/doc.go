// Package models defines the core domain models for Catalog.
//
// # Ownership
//
// Receipts and subscriptions belong to exactly one owner: a user or a group.
// The rule is enforced by the constructors (NewReceipt, NewSubscription) and by
// Apply on the typed update structs, which return a validation error instead of
// silently fixing the record.
//
// # Derived records
//
// Split rows and Insight snapshots are derived data. Splits are regenerated by
// the splitting package whenever a group receipt or its group changes; insights
// are recomputed by the insights package after personal receipt changes. Only the
// bookkeeping fields of a split (amount paid, status, notes, paid at) and the
// custom amount are authored directly.
//
// # Money and dates
//
// Amounts use decimal.Decimal with two fraction digits. Calendar dates are
// time.Time values at UTC midnight and are persisted as YYYY-MM-DD.
// Timestamps are Unix seconds.
package models
