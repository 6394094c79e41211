// Package filesystem provides the OS implementation of types.FS and the
// write helpers the state stores rely on: atomic replace and durable append.
package filesystem
