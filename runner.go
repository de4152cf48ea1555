package punkrun

import "go.uber.org/zap"

// Camera lead: the runner is kept this many pixels from the left edge.
const runnerLead = 64

// spawnMargin is how far past the right edge of the view obstacles appear.
const spawnMargin = 32

// runState is the gameplay state of one run.
type runState struct {
	player       ID
	grounded     bool
	nextObstacle int32
	hits         int
	jumps        int
}

// RunStats summarizes the current run.
type RunStats struct {
	Distance int32
	Hits     int
	Jumps    int
}

// Stats returns the progress of the current run.
func (g *Game) Stats() RunStats {
	return RunStats{
		Distance: g.actors.Position(g.run.player).X(),
		Hits:     g.run.hits,
		Jumps:    g.run.jumps,
	}
}

// Player returns the table id of the runner sprite.
func (g *Game) Player() ID { return g.run.player }

// startRun clears the tables and the event log and places the runner on the
// ground at the left of the view. The background keeps scrolling from where
// the title screen left it.
func (g *Game) startRun() {
	g.events.Reset()
	g.dropped = 0
	g.scrollBase = g.titleScroll
	for i := 0; i < g.tiles.Cap(); i++ {
		g.tiles.Despawn(ID(i))
	}
	for i := 0; i < g.actors.Cap(); i++ {
		g.actors.Despawn(ID(i))
	}
	rc := g.cfg.Runner
	size := g.spriteExtent(BitmapRunner)
	g.camera.MoveTo(ScenePos{})
	g.run = runState{
		player:       g.actors.Spawn(Forever(g.tick), NewScenePos(runnerLead, rc.Ground-size.H), Vec2{X: rc.RunSpeed}, BitmapRunner),
		grounded:     true,
		nextObstacle: g.cfg.Engine.ViewWidth + spawnMargin,
	}
	g.log.Info("run started", zap.Int32("ground", rc.Ground))
}

// spriteExtent returns the device-oriented size of a sprite bitmap.
func (g *Game) spriteExtent(id BitmapID) Extent {
	b := &g.images[id]
	return ExtentFromGame(b.Width, b.Height)
}

// spriteRect returns the scene-space rect covered by a sprite at pos.
func (g *Game) spriteRect(pos ScenePos, id BitmapID) Rect {
	size := g.spriteExtent(id)
	return Rect{X: pos.X(), Y: pos.Y(), W: size.W, H: size.H}
}

// updateGameplay advances the runner, obstacles and camera, then queues the
// frame in fixed order: sky, background layers, obstacles, runner.
func (g *Game) updateGameplay() {
	g.stepRunner()
	g.spawnObstacles()
	g.collide()

	pos := g.scrollBase + g.camera.Position().X()
	g.advanceLayers(pos)
	g.sky.Update(g.tick)

	g.pushScenery(pos)
	g.tiles.ForEach(func(id ID) {
		g.pushSprite(g.tiles.Position(id), g.tiles.Bitmap(id))
	})
	g.actors.ForEach(func(id ID) {
		g.pushSprite(g.actors.Position(id), g.actors.Bitmap(id))
	})
}

// stepRunner applies jump input and gravity, moves every sprite, lands the
// runner on the ground and keeps the camera on it.
func (g *Game) stepRunner() {
	rc := g.cfg.Runner
	id := g.run.player
	vel := g.actors.Velocity(id)
	if g.cmd.Action && g.run.grounded {
		vel.Y = -rc.JumpVelocity
		g.run.grounded = false
		g.run.jumps++
	}
	vel.Y += rc.Gravity
	vel.X = rc.RunSpeed
	g.actors.SetVelocity(id, vel)
	g.actors.Step()

	pos := g.actors.Position(id)
	floor := rc.Ground - g.spriteExtent(BitmapRunner).H
	if pos.Y() >= floor {
		g.actors.SetPosition(id, NewScenePos(pos.X(), floor))
		g.actors.SetVelocity(id, Vec2{X: rc.RunSpeed})
		g.run.grounded = true
	}
	g.camera.MoveTo(NewScenePos(g.actors.Position(id).X()-runnerLead, 0))
}

// spawnObstacles places blocks ahead of the view at random gaps and retires
// those that scrolled out behind it.
func (g *Game) spawnObstacles() {
	rc := g.cfg.Runner
	cam := g.camera.Bounds()
	block := g.spriteExtent(BitmapBlock)
	for g.run.nextObstacle <= cam.Right()+spawnMargin {
		g.tiles.Spawn(ActiveSince(g.tick), NewScenePos(g.run.nextObstacle, rc.Ground-block.H), BitmapBlock)
		g.run.nextObstacle += int32(g.rng.Between(int(rc.GapMin), int(rc.GapMax)))
	}
	g.tiles.ForEach(func(id ID) {
		if g.tiles.Position(id).X()+block.W < cam.X {
			g.tiles.Despawn(id)
		}
	})
	if n := g.tiles.Expire(g.tick, TickQty(rc.ObstacleTTL)); n > 0 {
		g.log.Debug("obstacles expired", zap.Int("count", n))
	}
}

// collide removes every obstacle the runner touches and counts the hit.
func (g *Game) collide() {
	player := g.spriteRect(g.actors.Position(g.run.player), BitmapRunner)
	g.tiles.ForEach(func(id ID) {
		if !player.Intersects(g.spriteRect(g.tiles.Position(id), g.tiles.Bitmap(id))) {
			return
		}
		g.tiles.Despawn(id)
		g.run.hits++
		g.emit(GameEvent{Type: EventObstacleHit})
	})
}

// pushSprite queues a scene-space sprite relative to the camera.
func (g *Game) pushSprite(pos ScenePos, id BitmapID) {
	if int(id) >= len(g.images) {
		return
	}
	g.queue.PushDrawView(g.images[id].View(), &g.framebuffer, g.camera.DeltaPosPx(pos))
}
