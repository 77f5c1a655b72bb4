// Package manifest implements persistence for the release manifest.
//
// The FileRepository loads the manifest JSON from disk and replaces it
// atomically on save.
package manifest
