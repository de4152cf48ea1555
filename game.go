package punkrun

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sprite bitmaps decoded from the blob, indexed by BitmapID.
const (
	BitmapRunner BitmapID = iota
	BitmapBlock
	BitmapTitle
	bitmapCount
)

var bitmapNames = [bitmapCount]string{"runner", "block", "title"}

// Options configures a Game. Only Config is required.
type Options struct {
	Config Config
	// Logger receives structured engine logs. Nil disables logging.
	Logger *zap.Logger
	// Layout is the blob table of contents. Nil uses DefaultLayout.
	Layout *Layout
	// Primary and Fallback locate the asset blob. The fallback is tried once
	// if the primary fails.
	Primary  AssetRef
	Fallback AssetRef
	// Sink, if set, receives every GameEvent as it is emitted.
	Sink EventSink
	// Context bounds the asset fetch. Nil means context.Background.
	Context context.Context
}

var (
	clearTitle    = Pixel{R: 12, G: 10, B: 24, A: 255}
	clearGameplay = Pixel{R: 20, G: 16, B: 36, A: 255}
	clearError    = Pixel{R: 96, G: 8, B: 16, A: 255}
)

// Game owns every piece of simulation and rendering state for one run.
// It is not safe for concurrent use; hosts call Update once per tick from a
// single goroutine and read Framebuffer afterwards.
type Game struct {
	cfg      Config
	log      *zap.Logger
	sink     EventSink
	ctx      context.Context
	primary  AssetRef
	fallback AssetRef

	arena  *Arena
	tick   GameTick
	mode   GameMode
	rng    *RandomRing
	input  *InputMapper
	cmd    InputCommand
	assets *AssetData

	reported AssetStatus
	primed   bool
	err      error

	camera      SceneCamera
	framebuffer Bitmap
	queue       *DrawQueue
	loads       *LoadQueue
	loaded      []LoadCommand
	layers      []*BackgroundAnimation
	sky         *Sky
	images      [bitmapCount]Bitmap
	tiles       *TileTable
	actors      *SpriteTable
	events      *ObjectTable[GameEvent]
	dropped     int

	debug       debugFlag
	run         runState
	titleScroll int32
	scrollBase  int32
	scroll      int32
	titlePulse  *Pulse

	ScreenshotDir   string
	screenshotQueue []string
}

// NewGame validates opts, sizes the arena from the configuration and the
// asset layout, and carves every table and buffer out of it. The game
// starts in ModeTitle with no assets resident.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout := opts.Layout
	if layout == nil {
		layout = DefaultLayout()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	g := &Game{
		cfg:           cfg,
		log:           log,
		sink:          opts.Sink,
		ctx:           ctx,
		primary:       opts.Primary,
		fallback:      opts.Fallback,
		mode:          ModeTitle,
		debug:         debugFlag(cfg.Engine.Debug),
		rng:           NewRandomRing(cfg.Engine.RandomRing, cfg.Engine.Seed),
		input:         NewInputMapper(),
		assets:        NewAssetData(layout),
		queue:         NewDrawQueue(cfg.Engine.DrawQueue),
		loads:         NewLoadQueue(len(cfg.Background.Layers)),
		titlePulse:    NewPulse(0.35, 1, 120, nil),
		ScreenshotDir: "screenshots",
	}
	g.assets.debug = g.debug
	g.queue.debug = g.debug
	g.loads.debug = g.debug
	if err := g.allocate(layout); err != nil {
		return nil, err
	}
	log.Info("game created",
		zap.Int("arena_bytes", g.arena.DeclaredBytes()),
		zap.Int("layers", len(g.layers)),
		zap.Int("tiles", g.tiles.Cap()),
		zap.Int("draw_queue", g.queue.Cap()),
	)
	return g, nil
}

// allocate declares every arena consumer, creates the arena and carves the
// engine state out of it.
func (g *Game) allocate(layout *Layout) error {
	e := g.cfg.Engine
	view := Extent{W: e.ViewWidth, H: e.ViewHeight}
	fbW, fbH := view.GameWidth(), view.GameHeight()

	type layerShape struct {
		cfg      LayerConfig
		variants int
		w, h     int32
	}
	shapes := make([]layerShape, 0, len(g.cfg.Background.Layers))
	for _, lc := range g.cfg.Background.Layers {
		n, w, h, ok := LayerVariants(layout, lc.Name)
		if !ok {
			return errors.Wrapf(ErrConfig, "layout has no variants for layer %q", lc.Name)
		}
		shapes = append(shapes, layerShape{cfg: lc, variants: n, w: w, h: h})
	}

	a := NewArena(e.ArenaLimit)
	a.debug = g.debug
	DeclareBitmap(a, fbW, fbH)
	for _, s := range shapes {
		DeclareBackground(a, s.w, s.h, s.variants)
	}
	DeclareSky(a, layout)
	for _, name := range bitmapNames {
		if le, ok := layout.Entry(name); ok {
			DeclareBitmap(a, le.Width, le.Height)
		}
	}
	DeclareTileTable(a, e.Tiles)
	DeclareSpriteTable(a, e.Sprites)
	DeclareObjectTable[GameEvent](a, e.ObjectTable)

	if err := a.Create(); err != nil {
		return err
	}
	g.arena = a

	fail := func(what string) error {
		a.Destroy()
		return errors.Wrapf(ErrAllocation, "arena exhausted allocating %s", what)
	}
	fb, ok := AllocBitmap(a, fbW, fbH)
	if !ok {
		return fail("framebuffer")
	}
	g.framebuffer = fb

	var bg Extent
	for i, s := range shapes {
		layer, ok := NewBackgroundAnimation(a, s.cfg.Name, i, s.cfg.Speed, s.w, s.h, s.variants)
		if !ok {
			return fail("layer " + s.cfg.Name)
		}
		g.layers = append(g.layers, layer)
		bg = ExtentFromGame(max(bg.GameWidth(), s.w), max(bg.GameHeight(), s.h))
	}

	sky, err := NewSky(a, layout, view, g.cfg.Sky)
	if err != nil {
		a.Destroy()
		return err
	}
	g.sky = sky

	for i, name := range bitmapNames {
		le, ok := layout.Entry(name)
		if !ok {
			a.Destroy()
			return errors.Wrapf(ErrAssetRead, "layout has no %s entry", name)
		}
		bmp, ok := AllocBitmap(a, le.Width, le.Height)
		if !ok {
			return fail(name)
		}
		g.images[i] = bmp
	}

	if g.tiles, ok = NewTileTable(a, e.Tiles); !ok {
		return fail("tile table")
	}
	if g.actors, ok = NewSpriteTable(a, e.Sprites); !ok {
		return fail("sprite table")
	}
	if g.events, ok = NewObjectTable[GameEvent](a, e.ObjectTable); !ok {
		return fail("event table")
	}

	g.camera = NewSceneCamera(view, Extent{W: e.SceneWidth, H: e.ViewHeight}, bg)
	g.camera.debug = g.debug
	return nil
}

// Close releases the arena. The game must not be used afterwards.
func (g *Game) Close() {
	if g.arena != nil {
		g.arena.Destroy()
	}
}

// Update runs one tick: map input, advance the current mode and queue its
// draws, composite the queue into the framebuffer, run pending background
// decodes, then advance the tick counter.
func (g *Game) Update(in InputSnapshot) {
	var stats debugStats
	start := time.Now()

	g.queue.Reset()
	g.cmd = g.input.Map(in)
	g.pollAssets()

	clearColor := clearTitle
	switch g.mode {
	case ModeTitle:
		g.updateTitle()
	case ModeGameplay:
		g.updateGameplay()
		clearColor = clearGameplay
	case ModeError:
		clearColor = clearError
	}
	stats.updateTime = time.Since(start)

	drawStart := time.Now()
	g.framebuffer.Fill(clearColor)
	g.queue.Draw()
	stats.commandCount = g.queue.Len()
	stats.drawTime = time.Since(drawStart)
	if n := g.queue.Dropped(); n > 0 {
		g.log.Warn("draw queue overflow", zap.Int("dropped", n), zap.Int("capacity", g.queue.Cap()))
	}

	loadStart := time.Now()
	g.loaded = g.loads.LoadAll(g.layers, g.loaded)
	for _, cmd := range g.loaded {
		g.emit(GameEvent{Type: EventLayerStreamed, Layer: cmd.Layer, Variant: cmd.Variant})
	}
	stats.loadCount = len(g.loaded)
	stats.loadTime = time.Since(loadStart)

	g.flushScreenshots()
	g.rng.Refresh()
	g.debugLog(stats)
	g.tick++
}

// pollAssets reports status changes, primes the engine once the blob is
// resident and moves to ModeError on any load failure.
func (g *Game) pollAssets() {
	status := g.assets.Status()
	if status != g.reported {
		g.reported = status
		g.log.Info("asset status", zap.Stringer("status", status))
		g.emit(GameEvent{Type: EventAssetStatus, Status: status})
	}
	switch {
	case status.Failed():
		g.fail(g.assets.Err())
	case status == AssetSuccess && !g.primed:
		if err := g.prime(); err != nil {
			g.fail(err)
		}
	}
}

// prime decodes everything that stays resident for the run.
func (g *Game) prime() error {
	for _, layer := range g.layers {
		if err := layer.Prime(g.assets); err != nil {
			return err
		}
	}
	if err := g.sky.Prime(g.assets, g.tick); err != nil {
		return err
	}
	for i, name := range bitmapNames {
		if res := g.assets.ReadImage(name, &g.images[i]); res != ReadOK {
			return errors.Wrapf(ErrAssetRead, "image %s: %s", name, res)
		}
	}
	g.primed = true
	g.log.Info("engine primed", zap.Uint64("tick", uint64(g.tick)))
	return nil
}

// fail enters the terminal error mode.
func (g *Game) fail(err error) {
	if g.mode == ModeError {
		return
	}
	g.err = err
	g.log.Error("entering error mode", zap.Error(err))
	g.setMode(ModeError)
}

func (g *Game) setMode(m GameMode) {
	if g.mode == m {
		return
	}
	g.log.Info("mode change", zap.Stringer("from", g.mode), zap.Stringer("to", m))
	g.mode = m
	g.emit(GameEvent{Type: EventModeChanged, Mode: m})
}

// emit records ev in the event table and forwards it to the sink.
func (g *Game) emit(ev GameEvent) {
	ev.Tick = g.tick
	if g.events.Push(ev) == InvalidID {
		g.dropped++
	}
	if g.sink != nil {
		g.sink.EmitEvent(ev)
	}
}

// updateTitle starts the asset load on first entry, animates the attract
// screen once assets are primed and starts a run on the action edge.
func (g *Game) updateTitle() {
	if g.assets.Status() == AssetNone {
		g.assets.StartLoad(g.ctx, g.primary, g.fallback, g.log)
	}
	if !g.primed {
		return
	}

	g.titleScroll++
	g.advanceLayers(g.titleScroll)
	g.sky.Update(g.tick)
	g.pushScenery(g.titleScroll)

	title := &g.images[BitmapTitle]
	size := ExtentFromGame(title.Width, title.Height)
	at := NewGamePos((g.cfg.Engine.ViewHeight-size.H)/3, (g.cfg.Engine.ViewWidth-size.W)/2)
	g.queue.PushDrawViewAlpha(title.View(), &g.framebuffer, at, opacity8(g.titlePulse.Update()))

	if g.cmd.Action && g.assets.Status() == AssetSuccess {
		g.startRun()
		g.setMode(ModeGameplay)
	}
}

// advanceLayers feeds the scroll position to every layer and queues the
// decodes of any layer that started a new cycle.
func (g *Game) advanceLayers(pos int32) {
	g.scroll = pos
	for _, layer := range g.layers {
		if cmd, ok := layer.Advance(pos, g.rng); ok {
			g.loads.Enqueue(cmd)
		}
	}
}

// pushScenery queues the sky and every background layer at scroll pos.
func (g *Game) pushScenery(pos int32) {
	g.sky.Push(g.queue, &g.framebuffer)
	for _, layer := range g.layers {
		pair := layer.AnimationPair(pos)
		g.queue.PushDrawView(pair[0].View, &g.framebuffer, NewGamePos(0, 0))
		g.queue.PushDrawView(pair[1].View, &g.framebuffer, NewGamePos(0, pair[0].Height))
	}
}

// Tick returns the number of completed updates.
func (g *Game) Tick() GameTick { return g.tick }

// Mode returns the current game mode.
func (g *Game) Mode() GameMode { return g.mode }

// Err returns the error that moved the game into ModeError.
func (g *Game) Err() error { return g.err }

// Assets returns the asset store.
func (g *Game) Assets() *AssetData { return g.assets }

// Camera returns the scene camera.
func (g *Game) Camera() *SceneCamera { return &g.camera }

// Layers returns the background layers in draw order.
func (g *Game) Layers() []*BackgroundAnimation { return g.layers }

// Tiles returns the obstacle table.
func (g *Game) Tiles() *TileTable { return g.tiles }

// Sprites returns the actor table.
func (g *Game) Sprites() *SpriteTable { return g.actors }

// DrawQueue returns the queue built by the last Update.
func (g *Game) DrawQueue() *DrawQueue { return g.queue }

// Framebuffer returns the camera framebuffer in bitmap orientation. Its
// Width is the device height and its Height the device width.
func (g *Game) Framebuffer() *Bitmap { return &g.framebuffer }

// DeviceSize returns the framebuffer size in device orientation.
func (g *Game) DeviceSize() (w, h int) {
	return int(g.cfg.Engine.ViewWidth), int(g.cfg.Engine.ViewHeight)
}

// Config returns the configuration the game was built with.
func (g *Game) Config() Config { return g.cfg }

// Command returns the input command mapped in the last Update.
func (g *Game) Command() InputCommand { return g.cmd }

// Events returns the events recorded since the current run started, or
// since the game was created while still on the title screen, oldest first.
// Events past the table capacity are counted by DroppedEvents but not
// stored; both reset when a run starts.
func (g *Game) Events() []GameEvent {
	out := make([]GameEvent, g.events.Len())
	for i := range out {
		out[i] = *g.events.At(ID(i))
	}
	return out
}

// ScrollPosition returns the scroll position the background layers were
// last advanced to. It keeps increasing across the switch from the title
// screen into a run.
func (g *Game) ScrollPosition() int32 { return g.scroll }

// DroppedEvents returns the number of events that did not fit the table.
func (g *Game) DroppedEvents() int { return g.dropped }

// Arena returns the arena backing the game state.
func (g *Game) Arena() *Arena { return g.arena }
