package app

import (
	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/transport"
)

// Server event names.
const (
	EventLEDNewState    = "ledNewState"
	EventCameraNewState = "cameraNewState"
	EventNewState       = "newState"
	EventInterlock      = "interlock"
	EventConnect        = "connect"
	EventLEDConnect     = "led_connect"
	EventDisconnect     = "disconnect"
)

// Sink receives everything the transport produces. *control.Runner
// implements it.
type Sink interface {
	HandleEvent(ev device.Event)
	HandleInterlockWarning(ev device.Event)
	SetPushConnected(up bool)
}

// Bus is the part of the transport adapter that wire needs.
type Bus interface {
	Subscribe(event string, h transport.Handler)
	OnConnect(fn func())
	OnDisconnect(fn func(error))
}

// wire routes push events and channel lifecycle into sink. resync runs
// whenever a fresh full snapshot is due.
func wire(bus Bus, sink Sink, resync func()) {
	for _, name := range []string{EventLEDNewState, EventCameraNewState, EventNewState} {
		bus.Subscribe(name, sink.HandleEvent)
	}
	bus.Subscribe(EventInterlock, sink.HandleInterlockWarning)

	// The server reports the device itself going away.
	bus.Subscribe(EventDisconnect, func(device.Event) {
		sink.HandleEvent(device.Failure())
	})
	for _, name := range []string{EventConnect, EventLEDConnect} {
		bus.Subscribe(name, func(device.Event) { resync() })
	}

	bus.OnConnect(func() {
		sink.SetPushConnected(true)
		resync()
	})
	bus.OnDisconnect(func(error) {
		sink.SetPushConnected(false)
	})
}
