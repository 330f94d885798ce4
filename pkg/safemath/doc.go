// Package safemath provides checked fixed-width integer arithmetic for balance
// accounting. Every function either returns the exact result or one of the
// sentinel errors below; none of them wraps, saturates or truncates silently.
//
// The package is stateless. Scales are always passed explicitly.
package safemath
