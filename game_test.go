package punkrun

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// gateSource blocks every read until release is closed.
type gateSource struct {
	release chan struct{}
	blob    []byte
}

func (s gateSource) ReadBytes(ctx context.Context, _ string) ([]byte, error) {
	select {
	case <-s.release:
		return s.blob, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recordingSink collects emitted events.
type recordingSink struct {
	events []GameEvent
}

func (s *recordingSink) EmitEvent(ev GameEvent) { s.events = append(s.events, ev) }

func newTestGame(t *testing.T, primary, fallback AssetRef) (*Game, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	g, err := NewGame(Options{
		Config:   DefaultConfig(),
		Primary:  primary,
		Fallback: fallback,
		Sink:     sink,
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Close)
	return g, sink
}

func memoryRef(seed uint64) AssetRef {
	return AssetRef{Source: MemorySource{"punkrun.bin": GenerateBlob(DefaultLayout(), seed)}, Path: "punkrun.bin"}
}

// loadedGame returns a game that has finished loading and priming.
func loadedGame(t *testing.T) (*Game, *recordingSink) {
	t.Helper()
	g, sink := newTestGame(t, memoryRef(1), AssetRef{})
	g.Update(InputSnapshot{})
	waitStatus(t, g.Assets())
	g.Update(InputSnapshot{})
	if !g.primed {
		t.Fatalf("game not primed: mode %s, err %v", g.Mode(), g.Err())
	}
	return g, sink
}

var pressAction = InputSnapshot{Buttons: ButtonAction}

func TestGameTitleToGameplayScenario(t *testing.T) {
	gate := gateSource{release: make(chan struct{}), blob: GenerateBlob(DefaultLayout(), 1)}
	g, sink := newTestGame(t, AssetRef{Source: gate, Path: "punkrun.bin"}, AssetRef{})

	if g.Assets().Status() != AssetNone {
		t.Fatalf("fresh game status = %s, want none", g.Assets().Status())
	}
	if g.Mode() != ModeTitle {
		t.Fatalf("fresh game mode = %s, want title", g.Mode())
	}

	g.Update(InputSnapshot{})
	if g.Assets().Status() != AssetLoading {
		t.Fatalf("status after first title tick = %s, want loading", g.Assets().Status())
	}

	g.Update(pressAction)
	if g.Mode() != ModeTitle {
		t.Fatal("action while loading left the title screen")
	}

	close(gate.release)
	if st := waitStatus(t, g.Assets()); st != AssetSuccess {
		t.Fatalf("status = %s: %v", st, g.Assets().Err())
	}
	g.Update(InputSnapshot{})
	if g.Mode() != ModeTitle {
		t.Fatal("left the title screen without an action")
	}

	g.Update(pressAction)
	if g.Mode() != ModeGameplay {
		t.Fatalf("mode after action = %s, want gameplay", g.Mode())
	}
	if g.Tick() != 4 {
		t.Errorf("Tick = %d, want 4", g.Tick())
	}

	var statuses []AssetStatus
	var modes []GameMode
	for _, ev := range sink.events {
		switch ev.Type {
		case EventAssetStatus:
			statuses = append(statuses, ev.Status)
		case EventModeChanged:
			modes = append(modes, ev.Mode)
		}
	}
	if len(statuses) != 2 || statuses[0] != AssetLoading || statuses[1] != AssetSuccess {
		t.Errorf("status events = %v, want [loading success]", statuses)
	}
	if len(modes) != 1 || modes[0] != ModeGameplay {
		t.Errorf("mode events = %v, want [gameplay]", modes)
	}
	if ev := g.Events(); len(ev) == 0 || ev[0].Type != EventModeChanged || ev[0].Mode != ModeGameplay {
		t.Errorf("event log after run start = %+v, want it to open with the gameplay mode change", ev)
	}
}

func TestGameLoadFailureIsTerminal(t *testing.T) {
	g, _ := newTestGame(t, AssetRef{Source: MemorySource{}, Path: "a"}, AssetRef{Source: MemorySource{}, Path: "b"})
	g.Update(InputSnapshot{})
	waitStatus(t, g.Assets())
	g.Update(InputSnapshot{})

	if g.Mode() != ModeError {
		t.Fatalf("mode = %s, want error", g.Mode())
	}
	if !errors.Is(g.Err(), ErrAssetLoad) {
		t.Errorf("Err = %v, want ErrAssetLoad", g.Err())
	}
	for i := 0; i < 3; i++ {
		g.Update(pressAction)
		g.Update(InputSnapshot{})
	}
	if g.Mode() != ModeError {
		t.Error("error mode is not terminal")
	}
	if got := g.Framebuffer().At(0, 0); got != clearError {
		t.Errorf("framebuffer = %+v, want the error fill", got)
	}
}

func TestGameMalformedBlobIsFailRead(t *testing.T) {
	g, _ := newTestGame(t, AssetRef{Source: MemorySource{"x": []byte("PKRN\x01\x00\x00\x00")}, Path: "x"}, AssetRef{})
	g.Update(InputSnapshot{})
	if st := waitStatus(t, g.Assets()); st != AssetFailRead {
		t.Fatalf("status = %s, want fail_read", st)
	}
	g.Update(InputSnapshot{})
	if g.Mode() != ModeError {
		t.Errorf("mode = %s, want error", g.Mode())
	}
}

func TestGameplayRun(t *testing.T) {
	g, sink := loadedGame(t)
	g.Update(pressAction)
	if g.Mode() != ModeGameplay {
		t.Fatalf("mode = %s", g.Mode())
	}

	for i := 0; i < 600; i++ {
		in := InputSnapshot{}
		if i%45 == 0 {
			in = pressAction
		}
		g.Update(in)
		if d := g.DrawQueue().Dropped(); d != 0 {
			t.Fatalf("tick %d dropped %d draws", g.Tick(), d)
		}
	}

	stats := g.Stats()
	if stats.Distance < 1000 {
		t.Errorf("Distance = %d, want the runner to have moved", stats.Distance)
	}
	if stats.Jumps == 0 {
		t.Error("no jumps registered")
	}
	if cam := g.Camera().Position().X(); cam != stats.Distance-runnerLead {
		t.Errorf("camera x = %d, want runner x - %d = %d", cam, runnerLead, stats.Distance-runnerLead)
	}
	if g.Tiles().Active() == 0 {
		t.Error("no obstacles on screen")
	}
	block := g.spriteExtent(BitmapBlock)
	g.Tiles().ForEach(func(id ID) {
		if x := g.Tiles().Position(id).X(); x+block.W < g.Camera().Position().X() {
			t.Errorf("obstacle %d at x %d left behind the camera", id, x)
		}
	})

	streamed := map[int]int{}
	for _, ev := range sink.events {
		if ev.Type == EventLayerStreamed {
			streamed[ev.Layer]++
		}
	}
	for i := range g.Layers() {
		if streamed[i] == 0 {
			t.Errorf("layer %d never streamed a variant", i)
		}
	}
}

func TestGameplayPlayerLandsOnGround(t *testing.T) {
	g, _ := loadedGame(t)
	g.Update(pressAction)
	rc := g.Config().Runner
	floor := rc.Ground - g.spriteExtent(BitmapRunner).H

	g.Update(InputSnapshot{})
	g.Update(pressAction) // jump on the press edge
	g.Update(InputSnapshot{})
	if y := g.Sprites().Position(g.Player()).Y(); y >= floor {
		t.Fatalf("runner y = %d after jump, want above %d", y, floor)
	}
	for i := 0; i < 120; i++ {
		g.Update(InputSnapshot{})
	}
	if y := g.Sprites().Position(g.Player()).Y(); y != floor {
		t.Errorf("runner y = %d after landing, want %d", y, floor)
	}
}

func TestGameCollisionCountsHit(t *testing.T) {
	g, sink := loadedGame(t)
	g.Update(pressAction)
	pos := g.Sprites().Position(g.Player())
	g.Tiles().Spawn(ActiveSince(g.Tick()), pos.Add(4, 0), BitmapBlock)
	g.Update(InputSnapshot{})

	if g.Stats().Hits != 1 {
		t.Fatalf("Hits = %d, want 1", g.Stats().Hits)
	}
	hits := 0
	for _, ev := range sink.events {
		if ev.Type == EventObstacleHit {
			hits++
		}
	}
	if hits != 1 {
		t.Errorf("obstacle hit events = %d, want 1", hits)
	}
}

func TestGameDeterministic(t *testing.T) {
	run := func() []Pixel {
		g, _ := loadedGame(t)
		g.Update(pressAction)
		for i := 0; i < 200; i++ {
			in := InputSnapshot{}
			if i%30 == 0 {
				in = pressAction
			}
			g.Update(in)
		}
		return append([]Pixel(nil), g.Framebuffer().Pix...)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("framebuffers differ at pixel %d", i)
		}
	}
}

func TestGameTitleDrawsScenery(t *testing.T) {
	g, _ := loadedGame(t)
	g.Update(InputSnapshot{})
	if g.DrawQueue().Len() < 3 {
		t.Errorf("title queued %d commands, want sky, layers and title", g.DrawQueue().Len())
	}
	distinct := map[Pixel]bool{}
	for _, p := range g.Framebuffer().Pix {
		distinct[p] = true
	}
	if len(distinct) < 10 {
		t.Errorf("framebuffer has %d distinct colors, want rendered scenery", len(distinct))
	}
}

func TestNewGameArenaLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.ArenaLimit = 1024
	_, err := NewGame(Options{Config: cfg})
	if !errors.Is(err, ErrAllocation) {
		t.Errorf("NewGame = %v, want ErrAllocation", err)
	}
}

func TestNewGameUnknownLayer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background.Layers = []LayerConfig{{Name: "mid", Speed: 10}}
	_, err := NewGame(Options{Config: cfg})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("NewGame = %v, want ErrConfig", err)
	}
}

func TestGameFramebufferOrientation(t *testing.T) {
	g, _ := newTestGame(t, AssetRef{}, AssetRef{})
	fb := g.Framebuffer()
	w, h := g.DeviceSize()
	if int(fb.Height) != w || int(fb.Width) != h {
		t.Errorf("framebuffer %dx%d, want %dx%d transposed from device %dx%d", fb.Width, fb.Height, h, w, w, h)
	}
}

func TestGameScreenshot(t *testing.T) {
	g, _ := loadedGame(t)
	g.ScreenshotDir = t.TempDir()
	g.Screenshot("title screen")
	g.Update(InputSnapshot{})

	matches, err := filepath.Glob(filepath.Join(g.ScreenshotDir, "*_title_screen.png"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("screenshots = %v, %v", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	w, h := g.DeviceSize()
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Errorf("screenshot %dx%d, want device %dx%d", b.Dx(), b.Dy(), w, h)
	}
}

func TestGameEventTableOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.ObjectTable = 1
	g, err := NewGame(Options{Config: cfg, Primary: memoryRef(1)})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	g.Update(InputSnapshot{})
	waitStatus(t, g.Assets())
	g.Update(InputSnapshot{})
	g.Update(InputSnapshot{})
	if len(g.Events()) != 1 || g.DroppedEvents() == 0 {
		t.Errorf("events = %d dropped = %d, want 1 and >0", len(g.Events()), g.DroppedEvents())
	}
}

func TestGameScrollContinuesIntoRun(t *testing.T) {
	g, sink := loadedGame(t)
	for i := 0; i < 500; i++ {
		g.Update(InputSnapshot{})
	}
	g.Update(pressAction)
	if g.Mode() != ModeGameplay {
		t.Fatalf("mode = %s, want gameplay", g.Mode())
	}
	before := g.ScrollPosition()
	near := g.Layers()[len(g.Layers())-1]
	beforeCycle, beforeSplit := near.scroll(before)
	streamed := len(sink.events)

	g.Update(InputSnapshot{})
	after := g.ScrollPosition()
	if after < before {
		t.Fatalf("scroll went from %d to %d across the run start", before, after)
	}
	cycle, split := near.scroll(after)
	if cycle < beforeCycle || (cycle == beforeCycle && split < beforeSplit) {
		t.Errorf("near layer moved back from cycle %d split %d to cycle %d split %d",
			beforeCycle, beforeSplit, cycle, split)
	}
	for _, ev := range sink.events[streamed:] {
		if ev.Type == EventLayerStreamed && cycle == beforeCycle {
			t.Errorf("layer %d streamed without crossing a cycle", ev.Layer)
		}
	}
}

func TestGameEventLogRestartsPerRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.ObjectTable = 1
	g, err := NewGame(Options{Config: cfg, Primary: memoryRef(1)})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	g.Update(InputSnapshot{})
	waitStatus(t, g.Assets())
	g.Update(InputSnapshot{})
	if g.DroppedEvents() == 0 {
		t.Fatalf("title screen did not fill the log: %d events", len(g.Events()))
	}

	g.Update(pressAction)
	if g.DroppedEvents() != 0 {
		t.Errorf("DroppedEvents = %d after run start, want 0", g.DroppedEvents())
	}
	ev := g.Events()
	if len(ev) != 1 || ev[0].Type != EventModeChanged || ev[0].Tick != g.Tick()-1 {
		t.Errorf("events after run start = %+v, want the gameplay mode change first", ev)
	}
}
