package cast

// Side names the case a Discriminator chose.
type Side int

const (
	// Neither means the value matched no case.
	Neither Side = iota
	// First means the value matched the A case.
	First
	// Second means the value matched the B case.
	Second
)

// Discriminator classifies a sum type into one of two disjoint cases.
type Discriminator[Sum, A, B any] interface {
	Classify(Sum) (A, B, Side)
}

type downcastDiscriminator[Sum, A, B any] struct {
	da Downcast[Sum, A]
	db Downcast[Sum, B]
}

// Discriminate builds a Discriminator from two downcasts. The first is tried
// first, so a value both accept is classified as First.
func Discriminate[Sum, A, B any](da Downcast[Sum, A], db Downcast[Sum, B]) Discriminator[Sum, A, B] {
	return downcastDiscriminator[Sum, A, B]{da: da, db: db}
}

func (d downcastDiscriminator[Sum, A, B]) Classify(s Sum) (A, B, Side) {
	var (
		zeroA A
		zeroB B
	)
	if a, ok := d.da.DownCast(s); ok {
		return a, zeroB, First
	}
	if b, ok := d.db.DownCast(s); ok {
		return zeroA, b, Second
	}
	return zeroA, zeroB, Neither
}
