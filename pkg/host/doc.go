// Package host bridges the widget engine to an embedding host runtime.
//
// The engine never inspects host values beyond the Value interface:
// it decomposes tagged variants, invokes closures, and hashes values
// to decide component identity across reconciles. Values that cannot
// be hashed collapse to SentinelHash and therefore compare equal for
// reconciliation purposes. This is a documented hazard: a component
// whose identity rests on an unhashable value will not reset its
// state when that value changes. Pass such data through props instead.
//
// The concrete types in this package (Tagged, Str, Boolean, Nat,
// Closure, External) form a reference host runtime. Embedders with
// their own value representation implement Value directly.
package host
