// Package store owns application state and the composed dispatch pipeline.
//
// Every dispatch runs on the store's designated execution context, so no two
// reducer invocations ever touch the state concurrently. A store moves through
// three phases: constructed, servicing dispatches, torn down. After Close,
// dispatching is a no-op.
package store
