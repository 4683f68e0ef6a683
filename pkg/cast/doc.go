/*
Package cast provides safe widening and narrowing between a dynamic supertype and a
concrete subtype.

An Embedding pairs a total Cast (Sub to Super) with a partial DownCast (Super to Sub).
The contract every embedding honors is the round-trip law:

	sub, ok := e.DownCast(e.Cast(x)) // ok == true, sub == x

A failed DownCast is not an error. It means "this value is not for me" and callers
skip it silently. This is how heterogeneous action buses route a dynamic envelope to
the one handler interested in its concrete type.

# Built-ins

  - Identity: T to T.
  - Optional: T to *T.
  - Result: T to result.Result[T].
  - Enum: a raw-value-backed enumeration with an explicit case list.
  - Dynamic: T to any, checked with a type assertion.

Compose chains embeddings; WithFallback and FirstOf try several downcasts in order
with first-match-wins semantics; Discriminate classifies a sum into one of two cases.
*/
package cast
