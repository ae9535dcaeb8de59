// Package aggregates implements the contract and session aggregates over gorm.
//
// Each write runs in one TxRunner transaction, composes the table repos from
// internal/data/repos, and leaves through MapError so callers only see aggregate codes.
package aggregates
