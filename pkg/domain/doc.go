/*
Package domain contains the value types shared by every layer of the Weave runtime.

It is kept free of behavior: reducers, middleware and the store all exchange these
types, but none of them lives here.

# Key Entities

  - Action: a dynamically typed value describing what happened.
  - Effect: a dynamically typed value describing work a transition asks for.
  - FailedAction: the action synthesized when an asynchronous effect fails.
  - SubscribeSignal: the subscribe/unsubscribe classification read by observable bridges.
*/
package domain
