// Package events provides types and interfaces for task lifecycle events.
//
// The task service emits an event after every successful mutation without
// knowing who listens. Handlers registered on the emitter decide what to do
// with them; the default LoggingHandler writes an audit trail.
//
// The primary components are:
// - TaskEvent: a created, updated or deleted notification for one task
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
