// Package errors provides the coded, structured errors used across
// the widget engine's outer surfaces: every registered code carries a
// category, a message, and a fix suggestion so transports and the CLI
// can render actionable diagnostics.
//
// Engine-internal dispatch uses plain sentinel errors (see
// pkg/widget); this package wraps them at the boundary where a code
// is worth showing to an operator.
package errors
