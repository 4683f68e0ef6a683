// Package reducer defines the state-transition unit and its composition operators.
//
// A Reducer mutates its scoped state in place and returns the effects of the
// transition. Composition never reorders or deduplicates effects: for a given
// composition tree the effect list is always produced in declaration order.
//
// Narrowing operators (Prismed, Erase, FilterMap, Discriminated) treat a failed
// focus or downcast as "not for me": the wrapped reducer is skipped and
// contributes nothing.
package reducer
