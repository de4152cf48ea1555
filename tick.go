package punkrun

import "math"

// GameTick counts simulation steps since the game was created. It increases
// by exactly one per Update and never wraps in practice.
type GameTick uint64

// TickQty is a duration in ticks, derived from differences of GameTicks.
type TickQty uint32

// TickQtyMax is the largest representable duration.
const TickQtyMax TickQty = math.MaxUint32

// Add returns t advanced by q ticks.
func (t GameTick) Add(q TickQty) GameTick {
	return t + GameTick(q)
}

// Since returns the number of ticks from earlier to t, saturating at
// TickQtyMax. It returns 0 when earlier is after t.
func (t GameTick) Since(earlier GameTick) TickQty {
	if earlier >= t {
		return 0
	}
	d := t - earlier
	if d > GameTick(TickQtyMax) {
		return TickQtyMax
	}
	return TickQty(d)
}

// LifetimeKind distinguishes the variants of Lifetime.
type LifetimeKind uint8

const (
	LifeDespawned LifetimeKind = iota // slot is free
	LifeActive                        // slot is live since Start
	LifeForever                       // slot is live and never expires
)

// Lifetime is the lifetime state of a table slot. The zero value is
// despawned, so freshly zeroed arena storage holds only free slots.
type Lifetime struct {
	start GameTick
	kind  LifetimeKind
}

// Despawned returns the lifetime of a free slot.
func Despawned() Lifetime {
	return Lifetime{}
}

// ActiveSince returns the lifetime of a slot spawned at tick t.
func ActiveSince(t GameTick) Lifetime {
	return Lifetime{start: t, kind: LifeActive}
}

// Forever returns the lifetime of a slot spawned at tick t that never expires.
func Forever(t GameTick) Lifetime {
	return Lifetime{start: t, kind: LifeForever}
}

// Kind returns the lifetime variant.
func (l Lifetime) Kind() LifetimeKind {
	return l.kind
}

// IsDespawned reports whether the slot is free.
func (l Lifetime) IsDespawned() bool {
	return l.kind == LifeDespawned
}

// Start returns the spawn tick. ok is false for despawned slots.
func (l Lifetime) Start() (t GameTick, ok bool) {
	if l.kind == LifeDespawned {
		return 0, false
	}
	return l.start, true
}

// Age returns how long the slot has been live at now. ok is false for
// despawned slots.
func (l Lifetime) Age(now GameTick) (q TickQty, ok bool) {
	if l.kind == LifeDespawned {
		return 0, false
	}
	return now.Since(l.start), true
}

// Expired reports whether an active slot is at least ttl ticks old.
// Despawned and forever slots never expire.
func (l Lifetime) Expired(now GameTick, ttl TickQty) bool {
	return l.kind == LifeActive && now.Since(l.start) >= ttl
}
