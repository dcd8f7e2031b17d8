// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, so the task service and query pipeline
// stay unchanged when a different backend is substituted.
package store
