// Package punkrun is the simulation and rendering core of a 2D side-scrolling
// runner with a fixed 320x180 software framebuffer.
//
// Everything the engine needs for a run is carved out of a single [Arena]
// sized up front, so a tick never allocates. Hosts own the window, the
// terminal or the headless loop; they feed one [InputSnapshot] per tick to
// [Game.Update] and read [Game.Framebuffer] afterwards.
//
// # Quick start
//
//	cfg := punkrun.DefaultConfig()
//	g, err := punkrun.NewGame(punkrun.Options{
//		Config:  cfg,
//		Primary: punkrun.AssetRef{Source: punkrun.FileSource{Root: "assets"}, Path: "punkrun.bin"},
//	})
//	if err != nil {
//		return err
//	}
//	defer g.Close()
//	return ebitenhost.Run(g, logger)
//
// The ebitenhost and termhost packages run a Game in an Ebitengine window or
// a tcell terminal. [RunHeadless] drives it from an [InputSource] such as an
// [InputScript] for automated captures.
//
// # Orientation
//
// Bitmaps are stored in game orientation: the scroll axis runs down the
// rows, so a bitmap's Width is the device height and its Height the device
// width. [GamePos], [ScenePos] and [Extent] convert between the two views of
// the same coordinate pair. Hosts transpose the framebuffer for display.
//
// # Assets
//
// All art lives in one binary blob described by a YAML [Layout]. The blob
// is fetched asynchronously from a primary [AssetSource] with a single
// fallback, validated against the layout and self-tested before the title
// screen leaves its loading state. [GenerateBlob] builds a procedural blob
// for tests and tools.
//
// # Background streaming
//
// Each [BackgroundAnimation] keeps two materialized buffers and a pool of
// palette-indexed variants. As the camera scrolls past a cycle boundary the
// stale buffer is re-decoded from a randomly chosen variant through the
// [LoadQueue], after the frame is composited.
//
// Logging uses [zap], configuration [toml], tweens [gween], and the ecs
// sub-module forwards game events to a [Donburi] world.
//
// [zap]: https://github.com/uber-go/zap
// [toml]: https://github.com/BurntSushi/toml
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package punkrun
