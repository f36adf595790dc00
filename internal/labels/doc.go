// Package labels fetches image class names from the JSON label API.
//
// The API serves an array of {"id", "classname"} records at its root and a
// single record at {root}/{id}. An image's ID is its filename without the
// extension. Transient failures are retried with exponential backoff; an ID
// the API does not know is reported as missing rather than as an error.
package labels
