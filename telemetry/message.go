// Package telemetry speaks the robot's joint telemetry protocol: a websocket on which the
// client periodically sends {"command":"get_telemetry"} and the robot answers with joint
// angles in degrees plus optional power readings.
package telemetry

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/ggldnl/hexviz/utils"
)

// CommandGetTelemetry asks the robot for a telemetry snapshot.
const CommandGetTelemetry = "get_telemetry"

// Request is an outbound command.
type Request struct {
	Command string `json:"command"`
}

// Message is one telemetry snapshot. Absent fields are nil.
type Message struct {
	Joints  map[string]float64 `json:"joints,omitempty"`
	Voltage *float64           `json:"voltage,omitempty"`
	Current *float64           `json:"current,omitempty"`
}

// JointNames returns the joint names in the message, sorted.
func (m *Message) JointNames() []string {
	names := lo.Keys(m.Joints)
	return sortStrings(names)
}

type rawMessage struct {
	Joints  map[string]interface{} `json:"joints"`
	Voltage interface{}            `json:"voltage"`
	Current interface{}            `json:"current"`
}

// Decode parses one inbound message. Numbers sent as strings are accepted; anything that
// is not a finite number is an error and the whole message should be dropped.
func Decode(data []byte) (*Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "malformed telemetry message")
	}
	msg := &Message{}
	if raw.Joints != nil {
		msg.Joints = make(map[string]float64, len(raw.Joints))
		for name, v := range raw.Joints {
			f, err := toFinite(v)
			if err != nil {
				return nil, errors.Wrapf(err, "joint %q", name)
			}
			msg.Joints[name] = f
		}
	}
	var err error
	if msg.Voltage, err = optionalFinite(raw.Voltage); err != nil {
		return nil, errors.Wrap(err, "voltage")
	}
	if msg.Current, err = optionalFinite(raw.Current); err != nil {
		return nil, errors.Wrap(err, "current")
	}
	return msg, nil
}

func optionalFinite(v interface{}) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	f, err := toFinite(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func toFinite(v interface{}) (float64, error) {
	switch v.(type) {
	case float64, string, json.Number:
	default:
		return 0, errors.Errorf("expected a number, got %T", v)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if !utils.IsFinite(f) {
		return 0, errors.Errorf("non-finite value %v", v)
	}
	return f, nil
}
