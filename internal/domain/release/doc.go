// Package release contains the wire types of the build metadata and release
// manifest documents, and the algorithm that merges the former into the latter.
//
// Merge is pure: it never reads or writes files and threads the manifest
// value through each call. Any inconsistency is reported as an error and the
// manifest passed in must then be discarded.
package release
