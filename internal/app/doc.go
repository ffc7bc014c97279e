// Package app is the composition root for ticontrol.
//
// Run wires configuration, logging, the device transport, the control loop
// and the Bubble Tea UI together, then blocks until the operator quits:
//
//	config.Load()             read ~/.config/ticontrol/config.toml
//	logging.New()             rotating diagnostic log
//	resolveAPI()              --api override or host-pattern selection
//	device.NewClient()        HTTP command channel
//	transport.NewPushChannel  WebSocket or MQTT push channel
//	control.NewRunner()       single owner of all device state
//	wire()                    push events and lifecycle into the runner
//	Resyncer                  /get on connect and every resync_seconds
//	ui.Run()                  TUI (blocks)
//
// Only start-up problems are returned. Once the UI is up, transport failures
// show as a disconnected device and are written to the log.
package app
