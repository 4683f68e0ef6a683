/*
Package weave is a unidirectional state-management runtime.

An application keeps a single state value inside a Store. The state changes
only when an action is dispatched: the action travels through a chain of
middleware down to a reducer, the reducer mutates its scoped view of the state
and returns effects, and the chain unwinds, each layer free to inspect or act
on those effects.

# Concept

The runtime is a composition algebra. Each piece composes with its own kind
and the result behaves predictably under nesting:

  - Optics (package optics): a Lens focuses on a part that is always there,
    a Prism on a case that may be absent. Compositions short-circuit.
  - Casts (package cast): an Embedding widens a concrete type into a dynamic
    envelope and narrows it back. A failed narrowing means "not for me".
  - Reducers (package reducer): sequenced, scoped by optics, filtered by
    casts or routed over a discriminated union. Effects keep declaration order.
  - Middleware (package middleware): an onion around dispatch, with a
    dependency bag (package deps) that flows downward.
  - Async effects (package async): continuation-based computations with
    Map, FlatMap and Zip, whose outcomes come back to the store as actions.

# Usage

	type Counter struct{ N int }
	type Increment struct{}

	r := reducer.Dynamic[Counter, Increment](reducer.Pure(func(c *Counter, _ Increment) { c.N++ }))

	rt, err := weave.New(Counter{}, r, nil, weave.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	rt.Dispatch(Increment{})
	_ = rt.Flush(ctx)
	fmt.Println(rt.State().N)

Stores with a concrete action type, or a custom middleware stack, are built
directly with package store.
*/
package weave
