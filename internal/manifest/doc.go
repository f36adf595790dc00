// Package manifest persists the dataset manifest that records every image in
// a target directory, and guards the directory against concurrent runs.
//
// The manifest is a single versioned JSON document written atomically, so a
// crash mid-run leaves the previous manifest intact. Unreadable manifests
// degrade to an empty manifest; the caller decides how loudly to report it.
package manifest
