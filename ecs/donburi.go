package ecs

import (
	"github.com/phanxgames/punkrun"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GameEventType is the Donburi event type for punkrun game events.
// Subscribe to this in your ECS systems to receive mode, asset, streaming
// and collision events.
var GameEventType = events.NewEventType[punkrun.GameEvent]()

// RunStateData mirrors the game state carried by the event stream.
type RunStateData struct {
	Mode     punkrun.GameMode
	Assets   punkrun.AssetStatus
	LastTick punkrun.GameTick
	Hits     int
	Streamed int
}

// RunState is a singleton component updated on every emitted event.
var RunState = donburi.NewComponentType[RunStateData]()

// DonburiSink is a punkrun.EventSink backed by a Donburi world.
type DonburiSink struct {
	world donburi.World
	state donburi.Entity
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// published to GameEventType and can be consumed with events.Subscribe and
// ProcessEvents. The RunState singleton is created in world.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, state: world.Create(RunState)}
}

// Entity returns the entity holding the RunState component.
func (s *DonburiSink) Entity() donburi.Entity { return s.state }

// State returns a copy of the current RunState.
func (s *DonburiSink) State() RunStateData {
	return *RunState.Get(s.world.Entry(s.state))
}

func (s *DonburiSink) EmitEvent(event punkrun.GameEvent) {
	st := RunState.Get(s.world.Entry(s.state))
	st.LastTick = event.Tick
	switch event.Type {
	case punkrun.EventModeChanged:
		st.Mode = event.Mode
		if event.Mode == punkrun.ModeGameplay {
			st.Hits = 0
		}
	case punkrun.EventAssetStatus:
		st.Assets = event.Status
	case punkrun.EventLayerStreamed:
		st.Streamed++
	case punkrun.EventObstacleHit:
		st.Hits++
	}
	GameEventType.Publish(s.world, event)
}
