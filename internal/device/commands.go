package device

import (
	"net/url"
	"strconv"
)

// Command names understood by the device server.
const (
	CmdGet             = "get"
	CmdPower           = "power"
	CmdSetVoltage      = "setVoltage"
	CmdSetCurrent      = "setCurrent"
	CmdToggleInterlock = "toggleInterlock"
	CmdResetInterlock  = "resetInterlock"
)

// Set-point ranges accepted by the device (closed intervals).
const (
	MinVoltage = 0.0
	MaxVoltage = 42.0
	MinCurrent = 0.0
	MaxCurrent = 10.0
)

// Command is a one-shot request to the device server.
type Command struct {
	Name   string
	Params url.Values
	// ID correlates the request with log lines; assigned on dispatch when empty.
	ID string
}

// Get requests an immediate full snapshot.
func Get() Command {
	return Command{Name: CmdGet}
}

// Power switches the output on or off.
func Power(on bool) Command {
	state := "off"
	if on {
		state = "on"
	}
	return Command{Name: CmdPower, Params: url.Values{"state": {state}}}
}

// SetVoltage sets the voltage set-point.
func SetVoltage(v float64) Command {
	return Command{Name: CmdSetVoltage, Params: url.Values{"val": {formatValue(v)}}}
}

// SetCurrent sets the current set-point.
func SetCurrent(v float64) Command {
	return Command{Name: CmdSetCurrent, Params: url.Values{"val": {formatValue(v)}}}
}

// ToggleInterlock enables (1) or disables (0) the interlock.
func ToggleInterlock(engage bool) Command {
	state := "0"
	if engage {
		state = "1"
	}
	return Command{Name: CmdToggleInterlock, Params: url.Values{"state": {state}}}
}

// ResetInterlock restarts the interlock timer.
func ResetInterlock() Command {
	return Command{Name: CmdResetInterlock}
}

// Path returns the request path and query, e.g. "/setVoltage?val=36".
func (c Command) Path() string {
	rel := url.URL{Path: "/" + c.Name, RawQuery: c.Params.Encode()}
	return rel.String()
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return c.Path()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
