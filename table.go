package punkrun

// ID indexes a slot in an entity table.
type ID int32

// InvalidID is returned when a table has no room. It is out of range for
// every table.
const InvalidID ID = -1

// BitmapID references one of the game's decoded sprite bitmaps.
type BitmapID uint16

// ObjectTable is a fixed-capacity, append-only table of pointer-free values.
type ObjectTable[T any] struct {
	items []T
	count int
	empty T
}

// DeclareObjectTable reserves arena space for a table of capacity items.
func DeclareObjectTable[T any](a *Arena, capacity int) {
	AddCount[T](a, capacity)
}

// NewObjectTable carves a table of capacity items out of the arena.
func NewObjectTable[T any](a *Arena, capacity int) (*ObjectTable[T], bool) {
	items, ok := Push[T](a, capacity)
	if !ok {
		return nil, false
	}
	return &ObjectTable[T]{items: items}, true
}

// Push appends item and returns its id, or InvalidID when the table is full.
func (t *ObjectTable[T]) Push(item T) ID {
	if t.count >= len(t.items) {
		return InvalidID
	}
	id := ID(t.count)
	t.items[t.count] = item
	t.count++
	return id
}

// At returns a pointer to the item with the given id. Invalid ids get a
// pointer to a shared empty item, reset to the zero value on every such
// access, so stray writes never land in real slots.
func (t *ObjectTable[T]) At(id ID) *T {
	if id < 0 || int(id) >= t.count {
		var zero T
		t.empty = zero
		return &t.empty
	}
	return &t.items[id]
}

// Valid reports whether id refers to a pushed item.
func (t *ObjectTable[T]) Valid(id ID) bool {
	return id >= 0 && int(id) < t.count
}

// Len returns the number of pushed items.
func (t *ObjectTable[T]) Len() int { return t.count }

// Cap returns the fixed capacity.
func (t *ObjectTable[T]) Cap() int { return len(t.items) }

// Reset forgets every item without releasing storage.
func (t *ObjectTable[T]) Reset() {
	clear(t.items[:t.count])
	t.count = 0
}

// slotTable holds the columns shared by tiles and sprites and the
// first-free spawn cursor.
type slotTable struct {
	lifetimes []Lifetime
	positions []ScenePos
	bitmaps   []BitmapID
	firstFree int
}

func declareSlots(a *Arena, capacity int) {
	AddCount[Lifetime](a, capacity)
	AddCount[ScenePos](a, capacity)
	AddCount[BitmapID](a, capacity)
}

func allocSlots(a *Arena, capacity int) (slotTable, bool) {
	lifetimes, ok1 := Push[Lifetime](a, capacity)
	positions, ok2 := Push[ScenePos](a, capacity)
	bitmaps, ok3 := Push[BitmapID](a, capacity)
	if !ok1 || !ok2 || !ok3 {
		return slotTable{}, false
	}
	return slotTable{lifetimes: lifetimes, positions: positions, bitmaps: bitmaps}, true
}

// claim returns the slot the next spawn writes to. It scans forward from the
// first-free cursor for a despawned slot. When none is left before the end,
// it wraps to slot 0 and reclaims it whether or not it is live.
func (t *slotTable) claim() int {
	n := len(t.lifetimes)
	i := t.firstFree
	for i < n && !t.lifetimes[i].IsDespawned() {
		i++
	}
	if i >= n {
		i = 0
	}
	t.firstFree = i + 1
	return i
}

func (t *slotTable) spawn(life Lifetime, pos ScenePos, bmp BitmapID) int {
	if len(t.lifetimes) == 0 {
		return int(InvalidID)
	}
	i := t.claim()
	t.lifetimes[i] = life
	t.positions[i] = pos
	t.bitmaps[i] = bmp
	return i
}

func (t *slotTable) valid(id ID) bool {
	return id >= 0 && int(id) < len(t.lifetimes)
}

// Despawn frees the slot and lowers the spawn cursor so the slot is reused
// first.
func (t *slotTable) Despawn(id ID) {
	if !t.valid(id) {
		return
	}
	t.lifetimes[id] = Despawned()
	if int(id) < t.firstFree {
		t.firstFree = int(id)
	}
}

// IsActive reports whether id is a live slot.
func (t *slotTable) IsActive(id ID) bool {
	return t.valid(id) && !t.lifetimes[id].IsDespawned()
}

// Lifetime returns the lifetime of slot id.
func (t *slotTable) Lifetime(id ID) Lifetime {
	if !t.valid(id) {
		return Despawned()
	}
	return t.lifetimes[id]
}

// Position returns the scene position of slot id.
func (t *slotTable) Position(id ID) ScenePos {
	if !t.valid(id) {
		return ScenePos{}
	}
	return t.positions[id]
}

// SetPosition moves slot id.
func (t *slotTable) SetPosition(id ID, pos ScenePos) {
	if t.valid(id) {
		t.positions[id] = pos
	}
}

// Bitmap returns the bitmap reference of slot id.
func (t *slotTable) Bitmap(id ID) BitmapID {
	if !t.valid(id) {
		return 0
	}
	return t.bitmaps[id]
}

// Cap returns the fixed capacity.
func (t *slotTable) Cap() int { return len(t.lifetimes) }

// Active returns the number of live slots.
func (t *slotTable) Active() int {
	n := 0
	for i := range t.lifetimes {
		if !t.lifetimes[i].IsDespawned() {
			n++
		}
	}
	return n
}

// ForEach calls fn for every live slot in index order.
func (t *slotTable) ForEach(fn func(id ID)) {
	for i := range t.lifetimes {
		if !t.lifetimes[i].IsDespawned() {
			fn(ID(i))
		}
	}
}

// Expire despawns every active slot at least ttl ticks old and returns how
// many were freed. Forever slots are kept.
func (t *slotTable) Expire(now GameTick, ttl TickQty) int {
	n := 0
	for i := range t.lifetimes {
		if t.lifetimes[i].Expired(now, ttl) {
			t.Despawn(ID(i))
			n++
		}
	}
	return n
}

// TileTable is a fixed-capacity structure-of-arrays pool of static tiles.
type TileTable struct {
	slotTable
}

// DeclareTileTable reserves arena space for a tile table.
func DeclareTileTable(a *Arena, capacity int) {
	declareSlots(a, capacity)
}

// NewTileTable carves a tile table out of the arena. All slots start
// despawned.
func NewTileTable(a *Arena, capacity int) (*TileTable, bool) {
	s, ok := allocSlots(a, capacity)
	if !ok {
		return nil, false
	}
	return &TileTable{slotTable: s}, true
}

// Spawn writes a tile into the next free slot and returns its id. A full
// table reclaims slot 0.
func (t *TileTable) Spawn(life Lifetime, pos ScenePos, bmp BitmapID) ID {
	return ID(t.spawn(life, pos, bmp))
}

// SpriteTable is a TileTable with per-slot velocity. Velocities are
// fractional; the sub-pixel remainder is carried between steps.
type SpriteTable struct {
	slotTable
	velocities []Vec2
	remainders []Vec2
}

// DeclareSpriteTable reserves arena space for a sprite table.
func DeclareSpriteTable(a *Arena, capacity int) {
	declareSlots(a, capacity)
	AddCount[Vec2](a, 2*capacity)
}

// NewSpriteTable carves a sprite table out of the arena.
func NewSpriteTable(a *Arena, capacity int) (*SpriteTable, bool) {
	s, ok := allocSlots(a, capacity)
	if !ok {
		return nil, false
	}
	vel, ok := Push[Vec2](a, 2*capacity)
	if !ok {
		return nil, false
	}
	return &SpriteTable{slotTable: s, velocities: vel[:capacity], remainders: vel[capacity:]}, true
}

// Spawn writes a sprite into the next free slot and returns its id. A full
// table reclaims slot 0.
func (t *SpriteTable) Spawn(life Lifetime, pos ScenePos, vel Vec2, bmp BitmapID) ID {
	i := t.spawn(life, pos, bmp)
	if i < 0 {
		return InvalidID
	}
	t.velocities[i] = vel
	t.remainders[i] = Vec2{}
	return ID(i)
}

// Velocity returns the velocity of slot id.
func (t *SpriteTable) Velocity(id ID) Vec2 {
	if !t.valid(id) {
		return Vec2{}
	}
	return t.velocities[id]
}

// SetVelocity sets the velocity of slot id.
func (t *SpriteTable) SetVelocity(id ID, v Vec2) {
	if t.valid(id) {
		t.velocities[id] = v
	}
}

// Step advances every live sprite by its velocity.
func (t *SpriteTable) Step() {
	for i := range t.lifetimes {
		if t.lifetimes[i].IsDespawned() {
			continue
		}
		r := &t.remainders[i]
		fx := r.X + t.velocities[i].X
		fy := r.Y + t.velocities[i].Y
		ix := floor32(fx)
		iy := floor32(fy)
		r.X = fx - float32(ix)
		r.Y = fy - float32(iy)
		t.positions[i] = t.positions[i].Add(ix, iy)
	}
}

// floor32 rounds toward negative infinity.
func floor32(v float32) int32 {
	i := int32(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}
