package optics_test

import (
	"strconv"
	"testing"

	"github.com/aretw0/weave/pkg/optics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	City string
	Zip  int
}

type Profile struct {
	Name    string
	Address Address
}

type Account struct {
	Profile Profile
	Tags    map[string]int
	Backup  *Profile
}

// Shape is a tagged union with explicit per-case accessors.
type Shape struct {
	circle *Circle
	square *Square
}

type Circle struct{ Radius int }
type Square struct{ Side int }

func CircleShape(c Circle) Shape { return Shape{circle: &c} }
func SquareShape(s Square) Shape { return Shape{square: &s} }

func (s Shape) Circle() (Circle, bool) {
	if s.circle == nil {
		return Circle{}, false
	}
	return *s.circle, true
}

func (s Shape) Square() (Square, bool) {
	if s.square == nil {
		return Square{}, false
	}
	return *s.square, true
}

var (
	profileLens = optics.Focus(func(a *Account) *Profile { return &a.Profile })
	addressLens = optics.Focus(func(p *Profile) *Address { return &p.Address })
	// zipLens is deliberately not a field access: it exposes Zip as a string.
	zipLens = optics.NewLens(
		func(a Address) string { return strconv.Itoa(a.Zip) },
		func(a *Address, s string) { a.Zip, _ = strconv.Atoi(s) },
	)
	circlePrism = optics.Case(Shape.Circle, CircleShape)
	radiusLens  = optics.Focus(func(c *Circle) *int { return &c.Radius })
)

func sampleAccounts() []Account {
	return []Account{
		{},
		{Profile: Profile{Name: "ada", Address: Address{City: "London", Zip: 1815}}},
		{Profile: Profile{Name: "grace", Address: Address{City: "NYC", Zip: 1906}}, Tags: map[string]int{"x": 1}},
	}
}

func TestLens_ApplyCallsChangeOnceAndWritesBack(t *testing.T) {
	acc := sampleAccounts()[1]
	calls := 0
	name := optics.Apply(profileLens, &acc, func(p *Profile) string {
		calls++
		p.Name = "lovelace"
		return p.Name
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, "lovelace", name)
	assert.Equal(t, "lovelace", acc.Profile.Name)

	calls = 0
	optics.Apply(zipLens, &acc.Profile.Address, func(s *string) struct{} {
		calls++
		*s = "42"
		return struct{}{}
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 42, acc.Profile.Address.Zip)
}

func TestLens_GetSet(t *testing.T) {
	acc := sampleAccounts()[2]
	deep := optics.Compose(optics.Compose(profileLens, addressLens), zipLens)
	assert.Equal(t, "1906", deep.Get(acc))

	deep.Set(&acc, "10001")
	assert.Equal(t, 10001, acc.Profile.Address.Zip)
	assert.Equal(t, "grace", acc.Profile.Name, "unfocused parts are preserved")
}

func TestLens_CompositionAssociativity(t *testing.T) {
	left := optics.Compose(optics.Compose(profileLens, addressLens), zipLens)
	right := optics.Compose(profileLens, optics.Compose(addressLens, zipLens))

	for _, acc := range sampleAccounts() {
		assert.Equal(t, left.Get(acc), right.Get(acc))

		a1, a2 := acc, acc
		r1 := optics.Apply(left, &a1, func(s *string) int { *s = *s + "7"; return len(*s) })
		r2 := optics.Apply(right, &a2, func(s *string) int { *s = *s + "7"; return len(*s) })
		assert.Equal(t, r1, r2)
		assert.Equal(t, a1, a2)
	}
}

func TestLens_Identity(t *testing.T) {
	id := optics.Identity[int]()
	v := 3
	id.Set(&v, 9)
	assert.Equal(t, 9, v)
	assert.Equal(t, 9, id.Get(v))
}

func TestKey_DefaultsAndGetDoesNotWrite(t *testing.T) {
	tags := optics.Compose(optics.Focus(func(a *Account) *map[string]int { return &a.Tags }), optics.Key("hits", 10))

	var acc Account
	assert.Equal(t, 10, tags.Get(acc))
	assert.Nil(t, acc.Tags, "reading never allocates")

	optics.Apply(tags, &acc, func(v *int) struct{} { *v++; return struct{}{} })
	require.NotNil(t, acc.Tags)
	assert.Equal(t, 11, acc.Tags["hits"])

	shared := map[string]int{}
	_ = optics.Key("absent", 1).Get(shared)
	assert.Empty(t, shared)
}

func TestBoth(t *testing.T) {
	name := optics.Focus(func(p *Profile) *string { return &p.Name })
	city := optics.Compose(addressLens, optics.Focus(func(a *Address) *string { return &a.City }))
	pair := optics.Both(name, city)

	p := sampleAccounts()[1].Profile
	got := pair.Get(p)
	assert.Equal(t, "ada", got.First)
	assert.Equal(t, "London", got.Second)

	pair.Modify(&p, func(pp *optics.Pair[string, string]) {
		pp.First, pp.Second = pp.Second, pp.First
	})
	assert.Equal(t, "London", p.Name)
	assert.Equal(t, "ada", p.Address.City)
}

func TestPrism_MatchAndMiss(t *testing.T) {
	shape := CircleShape(Circle{Radius: 2})
	area, ok := optics.ApplyPrism(circlePrism, &shape, func(c *Circle) int {
		c.Radius *= 2
		return c.Radius * c.Radius
	})
	require.True(t, ok)
	assert.Equal(t, 16, area)
	c, _ := shape.Circle()
	assert.Equal(t, 4, c.Radius, "prism writes back")

	square := SquareShape(Square{Side: 3})
	calls := 0
	_, ok = optics.ApplyPrism(circlePrism, &square, func(*Circle) int { calls++; return 0 })
	assert.False(t, ok)
	assert.Zero(t, calls)
	s, _ := square.Square()
	assert.Equal(t, 3, s.Side, "no mutation on a miss")
}

func TestPrism_TryGetPut(t *testing.T) {
	shape := CircleShape(Circle{Radius: 1})
	got, ok := circlePrism.TryGet(shape)
	require.True(t, ok)
	assert.Equal(t, 1, got.Radius)

	assert.True(t, circlePrism.Put(&shape, Circle{Radius: 5}))
	c, _ := shape.Circle()
	assert.Equal(t, 5, c.Radius)

	square := SquareShape(Square{})
	assert.False(t, circlePrism.Put(&square, Circle{Radius: 5}))
	_, isCircle := square.Circle()
	assert.False(t, isCircle)
}

func TestPrism_ShortCircuit(t *testing.T) {
	backup := optics.Focus(func(a *Account) **Profile { return &a.Backup })
	probeCalls := 0
	probe := optics.PrismFunc(func(p *Profile, change func(*string)) bool {
		probeCalls++
		change(&p.Name)
		return true
	})

	composed := optics.ComposePrism(optics.LensPrism(backup, optics.Deref[Profile]()), probe)

	var acc Account
	changeCalls := 0
	_, ok := optics.ApplyPrism(composed, &acc, func(*string) int { changeCalls++; return 0 })
	assert.False(t, ok)
	assert.Zero(t, probeCalls, "inner focus must not be evaluated")
	assert.Zero(t, changeCalls)

	acc.Backup = &Profile{Name: "old"}
	_, ok = optics.ApplyPrism(composed, &acc, func(s *string) int { changeCalls++; *s = "new"; return 0 })
	assert.True(t, ok)
	assert.Equal(t, 1, probeCalls)
	assert.Equal(t, 1, changeCalls)
	assert.Equal(t, "new", acc.Backup.Name)
}

func TestPrism_MixedCompositionIsPartial(t *testing.T) {
	shapes := []Shape{CircleShape(Circle{Radius: 3}), SquareShape(Square{Side: 1})}

	firstRadius := optics.PrismLens(optics.ComposePrism(optics.At[Shape](0), circlePrism), radiusLens)
	r, ok := firstRadius.TryGet(shapes)
	require.True(t, ok)
	assert.Equal(t, 3, r)

	secondRadius := optics.PrismLens(optics.ComposePrism(optics.At[Shape](1), circlePrism), radiusLens)
	_, ok = secondRadius.TryGet(shapes)
	assert.False(t, ok)

	outOfRange := optics.ComposePrism(optics.At[Shape](7), circlePrism)
	_, ok = outOfRange.TryGet(shapes)
	assert.False(t, ok)
}

func TestEntry(t *testing.T) {
	m := map[string]int{"a": 1}
	a := optics.Entry[string, int]("a")
	assert.True(t, a.Modify(&m, func(v *int) { *v += 1 }))
	assert.Equal(t, 2, m["a"])

	b := optics.Entry[string, int]("b")
	assert.False(t, b.Modify(&m, func(v *int) { *v = 9 }))
	_, exists := m["b"]
	assert.False(t, exists)
}

func TestLensAsPrism(t *testing.T) {
	acc := sampleAccounts()[1]
	p := profileLens.AsPrism()
	got, ok := p.TryGet(acc)
	require.True(t, ok)
	assert.Equal(t, "ada", got.Name)
}
