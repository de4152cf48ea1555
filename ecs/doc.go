// Package ecs provides ECS adapters for punkrun's game event stream.
//
// The primary adapter is [NewDonburiSink], which forwards every
// punkrun GameEvent into a [Donburi] world as a typed event and keeps a
// singleton [RunState] component current. Subscribe to [GameEventType] in
// your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	game, err := punkrun.NewGame(punkrun.Options{Config: cfg, Sink: sink})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
