package device

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrProtocol marks a payload that does not have the {success, msg} shape.
var ErrProtocol = errors.New("device: protocol error")

// Event is the normalised envelope of every push event and command reply.
type Event struct {
	Success bool
	Message Message
	// Text holds msg when the server sent a plain string instead of a state object.
	Text string
}

// Failure returns the event used for transport and protocol failures.
func Failure() Event {
	return Event{Success: false}
}

// Message carries the device state fields. Absent fields are nil.
type Message struct {
	LEDOn         *Switch `json:"led_on,omitempty"`
	Output        *Switch `json:"output,omitempty"`
	LEDPulsed     *Switch `json:"led_pulsed,omitempty"`
	LEDShape      *Shape  `json:"led_shape,omitempty"`
	ActualVoltage *Number `json:"actVoltage,omitempty"`
	ActualCurrent *Number `json:"actCurrent,omitempty"`
	SetVoltage    *Number `json:"setVoltage,omitempty"`
	SetCurrent    *Number `json:"setCurrent,omitempty"`
	Interlock     *Switch `json:"interlock,omitempty"`
	TimeToTrip    *Number `json:"time_to_trip,omitempty"`
}

// OutputState reports the output flag, preferring led_on over output.
func (m Message) OutputState() (on bool, ok bool) {
	switch {
	case m.LEDOn != nil:
		return bool(*m.LEDOn), true
	case m.Output != nil:
		return bool(*m.Output), true
	default:
		return false, false
	}
}

type envelope struct {
	Success *bool           `json:"success"`
	Msg     json.RawMessage `json:"msg"`
	Message json.RawMessage `json:"message"`
}

// DecodeEvent parses a {success, msg} payload. Anything else is ErrProtocol.
func DecodeEvent(data []byte) (Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Failure(), fmt.Errorf("%w: payload is not an object", ErrProtocol)
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Failure(), fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if env.Success == nil {
		return Failure(), fmt.Errorf("%w: missing success flag", ErrProtocol)
	}
	ev := Event{Success: *env.Success}

	raw := bytes.TrimSpace(env.Msg)
	if len(raw) == 0 {
		raw = bytes.TrimSpace(env.Message)
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ev, nil
	}
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &ev.Text); err != nil {
			return Failure(), fmt.Errorf("%w: msg: %w", ErrProtocol, err)
		}
	case '{':
		if err := json.Unmarshal(raw, &ev.Message); err != nil {
			return Failure(), fmt.Errorf("%w: msg: %w", ErrProtocol, err)
		}
	default:
		return Failure(), fmt.Errorf("%w: msg has unexpected type", ErrProtocol)
	}
	return ev, nil
}

// Switch is an on/off flag. The server sends "on"/"off", "true"/"false",
// JSON booleans or 0/1 depending on the field.
type Switch bool

// UnmarshalJSON implements json.Unmarshaler.
func (s *Switch) UnmarshalJSON(data []byte) error {
	text := strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), `"`))
	switch text {
	case "on", "true", "1", "yes", "engaged":
		*s = true
	case "off", "false", "0", "no", "", "disengaged":
		*s = false
	default:
		return fmt.Errorf("invalid switch value %s", data)
	}
	return nil
}

// Number is a float that may arrive as a JSON number or a numeric string.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number(v)
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Shape is the LED pulse shape: on and off durations in milliseconds.
type Shape [2]int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var pair []Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid led shape %s", data)
	}
	if len(pair) != 2 {
		return fmt.Errorf("led shape has %d values, want 2", len(pair))
	}
	*s = Shape{int(math.Round(pair[0].Float())), int(math.Round(pair[1].Float()))}
	return nil
}
