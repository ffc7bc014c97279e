// Package ui provides the Bubble Tea terminal interface for ticontrol.
//
// # Layout
//
//	┌ header: connection, output and interlock badges, last update ┐
//	│ command bar: short key help                                   │
//	├ device panel: voltage and current inputs, readouts, LED mode  ┤
//	│ interlock prompt (while open)                                 │
//	└ log pane (toggled with l)                                     ┘
//
// # Data flow
//
// The model never touches device state directly. Operator actions become
// calls on Intents, which post them to the controller loop; every resulting
// state.View arrives on the Updates channel and replaces the model's copy.
// Typing into a set-point input sends Change only for values that parse and
// lie inside the field's range, so an out-of-range keystroke is simply not
// accepted by the input. Leaving the input, with tab, enter or esc, is the
// blur that commits the value.
//
// # Themes
//
// Nightfox (default), Kanagawa and Slate, cycled with T.
package ui
