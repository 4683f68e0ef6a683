// Package observable provides a minimal push-based event model: sources emit
// values to subscribed observers until the subscription is cancelled.
//
// Every Subscribe returns a Cancellable. Cancelling is idempotent, safe after
// the source is gone, and stops delivery to that observer.
package observable
