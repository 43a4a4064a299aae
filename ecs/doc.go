// Package ecs provides ECS adapters for rubeview's viewer events.
//
// The primary adapter is [NewDonburiSink], which bridges viewer events
// (scene loaded or failed, drag start and end, view changes) into a
// [Donburi] world as typed events. Subscribe to [ViewerEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	viewer.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
