package domain

// SubscribeSignal classifies an action or effect as interest in an external
// event source.
type SubscribeSignal int

const (
	// Subscribe registers one more interested party.
	Subscribe SubscribeSignal = iota + 1
	// Unsubscribe releases one interested party.
	Unsubscribe
)

func (s SubscribeSignal) String() string {
	switch s {
	case Subscribe:
		return "subscribe"
	case Unsubscribe:
		return "unsubscribe"
	default:
		return "none"
	}
}

// Kind implements Kinded so that signals dispatched as actions log by name.
func (s SubscribeSignal) Kind() string {
	return "signal." + s.String()
}
