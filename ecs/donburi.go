package ecs

import (
	"github.com/phanxgames/rubeview"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ViewerEventType is the Donburi event type for rubeview viewer events.
// Subscribe to this in your ECS systems to receive scene, drag and view
// events.
var ViewerEventType = events.NewEventType[rubeview.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Viewer events are published to ViewerEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) rubeview.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event rubeview.Event) {
	ViewerEventType.Publish(s.world, event)
}
