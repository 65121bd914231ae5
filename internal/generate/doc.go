// Package generate renders the lines of each generated build artifact from
// a slice of the configuration. Generators are pure: they never touch the
// filesystem beyond reading, and a missing required field is an error, not
// a default.
package generate
