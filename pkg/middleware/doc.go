/*
Package middleware wraps the store's dispatch function with cross-cutting
behavior.

A Middleware receives the dispatch function below it, a non-owning handle to
the running store and the dependency bag in scope, and returns a new dispatch
function. Layers are chained with Compose as an onion: for Compose(m1, m2) a
dispatched action runs m1's preamble, then m2's preamble, then the reducer,
then m2's postamble and finally m1's postamble.

Middleware that needs to dispatch more actions must go through the Handle.
Handle.Dispatch enqueues on the store's context and never re-enters the
pipeline synchronously.

The dependency bag flows downward. A layer implementing Overlayer changes the
bag seen by everything below it; layers above are unaffected.
*/
package middleware
