/*
Package optics provides lenses and prisms: composable foci onto part of a larger value.

Both optics use the apply-with-callback form rather than separate get/set: the caller
hands over a pointer to the whole and a change function that receives a pointer to the
part. The optic invokes the change function and writes the part back into the whole
before returning, so the caller observes the mutation without a separate set step.

	lens := optics.Focus(func(s *Session) *Profile { return &s.Profile })
	name := optics.Apply(lens, &session, func(p *Profile) string {
		p.Visits++
		return p.Name
	})

A Lens is total: its change function runs exactly once per call. A Prism is partial:
its change function runs at most once, and not at all when the whole does not
currently match the focused case.

Compositions follow the usual laws:

  - Compose(Lens, Lens) is a Lens.
  - ComposePrism(Prism, Prism) is a Prism that matches only when both match.
  - LensPrism and PrismLens mix the two and are partial overall.

Every composition short-circuits: the inner focus is never evaluated when the outer
one fails.
*/
package optics
