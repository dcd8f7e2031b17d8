// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The query subpackage holds the pure filter, sort, paginate and stats
// computations that run over snapshots of tasks.
package domain
