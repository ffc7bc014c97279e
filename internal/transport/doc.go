// Package transport hides the device's push and command channels behind one
// Adapter.
//
// Commands go out over HTTP through device.Client, one request per command.
// Push events arrive over a PushChannel, either a WebSocket carrying
// {"event", "data"} frames or an MQTT subscription where the topic suffix
// names the event. Every payload is decoded into a device.Event before it
// reaches subscribers; payloads that do not decode are delivered as failures.
//
// Events with the same name are delivered in the order the server emitted
// them. Nothing is promised across different names.
package transport
