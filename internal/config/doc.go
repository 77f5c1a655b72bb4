// Package config defines the settings of the release merger and provides
// helpers to load, validate and save them in YAML format.
//
// The platform table lives here so that new generic platforms can be added
// without a rebuild.
package config
