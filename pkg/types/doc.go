// Package types defines the small interfaces shared across archstep packages,
// chiefly the filesystem abstraction the state stores are written against.
package types
