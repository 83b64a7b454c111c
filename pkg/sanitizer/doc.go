// Package sanitizer normalizes user-supplied text before validation and
// storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input yields an empty value, never an error.
//
// Normalization includes:
//   - Single-line text (titles, categories, names): trim and collapse whitespace
//   - Multi-line text (descriptions, notes): trim each line, keep line breaks,
//     drop runs of blank lines
//   - Emails: trim and lowercase
//   - Slices: normalize each item, drop empties and duplicates
package sanitizer
