// Package meta finds and decodes the per-architecture build metadata documents.
//
// Everything goes through a go-billy filesystem: the CLI uses the OS
// filesystem, tests use an in-memory one.
package meta
