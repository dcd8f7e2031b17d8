// Package service contains the application use cases for task management.
// It orchestrates the task store (defined in internal/store), the query
// pipeline in internal/domain/query and lifecycle events to fulfill the
// operations exposed by the API.
//
// Services receive dependencies through constructor injection and never
// depend on a specific store implementation. Store sentinel errors are
// wrapped in TaskServiceError and remain visible to errors.Is, so the API
// layer can map them to HTTP status codes.
package service
