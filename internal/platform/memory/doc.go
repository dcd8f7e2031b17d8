// Package memory provides in-process implementations of the store
// interfaces. State lives only for the lifetime of the process.
package memory
