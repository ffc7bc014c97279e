// Package device provides the wire model and HTTP command client for the
// LED / power-supply device server.
//
// # Overview
//
// The device server speaks two channels. Commands are plain GET requests
// (/get, /power, /setVoltage, /setCurrent, /toggleInterlock, /resetInterlock)
// that answer with a {success, msg} JSON object. State changes are pushed as
// named events carrying the same envelope (see package transport).
//
// # Architecture
//
//   - types.go: Event envelope, Message fields and lenient scalar decoders
//   - commands.go: Command constructors and set-point ranges
//   - client.go: HTTP command channel
//
// # Normalisation
//
// DecodeEvent is the single entry point for both the /get reply and pushed
// events, so the first snapshot and live updates share one shape. Anything
// that is not an object with a boolean success flag is reported as
// ErrProtocol and returned as a failure event.
//
// # Client Usage
//
//	client, err := device.NewClient("http://localhost:5020")
//	if err != nil {
//		return err
//	}
//	ev, err := client.Do(ctx, device.SetVoltage(36))
package device
