// Package seed loads demo tasks from a YAML fixture and creates them through
// the task service at startup, so lifecycle events fire as for API calls.
package seed
