// Package merger runs one release merge: it resolves the metadata documents
// of a build (or takes an explicit list), folds them into the release
// manifest in order and writes the manifest once at the end.
//
// Any inconsistency aborts the run before anything is written.
package merger
