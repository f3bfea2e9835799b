// Package sanitizer normalizes availability requests before they are validated.
//
// All functions are idempotent. Malformed input is passed through in a
// normalized form and left for the validator to reject; nothing here returns
// an error.
//
// Normalization includes:
//   - Identifiers: trim surrounding whitespace
//   - Object IDs: trim and lowercase the hex digits
//   - Time zones: trim, collapse repeated slashes and underscores
//   - Instants: trim surrounding whitespace
package sanitizer
