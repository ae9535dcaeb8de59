// Package aggregates defines the write boundaries of the membership core.
//
// Contract and session aggregates own their transactions; inputs here are already
// typed and validated, and every failure is an *Error carrying a Code from errors.go.
package aggregates
