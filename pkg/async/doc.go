// Package async implements deferred, continuation-based asynchronous
// computations.
//
// An Action[T] describes work whose result is a result.Result[T]. Nothing
// runs until Schedule is called with an execution context. Combinators build
// new actions without running their constituents.
//
// Every completion is delivered exactly once and on the execution context
// passed to Schedule: leaf actions hop back onto the context before resuming,
// so combinators can aggregate results without extra synchronization besides
// the join point in Zip.
//
// An Action is also an effect. Returned from a reducer, it is picked up by the
// scheduling middleware, and its outcome is dispatched back to the store as an
// action: the value on success, a domain.FailedAction on failure.
package async
