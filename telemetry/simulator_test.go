package telemetry

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	ws "github.com/gorilla/websocket"
	"go.viam.com/test"

	"github.com/ggldnl/hexviz/logging"
)

// script returns a random source that replays values, then repeats the last one.
func script(values ...float64) func() float64 {
	return func() float64 {
		v := values[0]
		if len(values) > 1 {
			values = values[1:]
		}
		return v
	}
}

func TestPowerStateSteady(t *testing.T) {
	p := NewPowerState()
	for i := 0; i < 5; i++ {
		p.Step(script(0.5))
	}
	test.That(t, p.Voltage, test.ShouldEqual, NominalVoltage)
	test.That(t, p.Current, test.ShouldEqual, NominalCurrent)
}

func TestPowerStateVoltageDip(t *testing.T) {
	p := NewPowerState()
	// fluctuate, pick voltage, dip by 0.4 V; recovery starts on the same step
	p.Step(script(0.005, 0.2, 0.8))
	test.That(t, p.Voltage, test.ShouldAlmostEqual, 5.8, 1e-9)
	test.That(t, p.Current, test.ShouldEqual, NominalCurrent)

	p.Step(script(0.5))
	test.That(t, p.Voltage, test.ShouldAlmostEqual, 5.9, 1e-9)

	for i := 0; i < 10; i++ {
		p.Step(script(0.5))
	}
	test.That(t, p.Voltage, test.ShouldEqual, NominalVoltage)
}

func TestPowerStateCurrentDip(t *testing.T) {
	p := NewPowerState()
	p.Step(script(0.001, 0.9, 0.5))
	test.That(t, p.Current, test.ShouldAlmostEqual, 2.6, 1e-9)
	test.That(t, p.Voltage, test.ShouldEqual, NominalVoltage)
	for i := 0; i < 10; i++ {
		p.Step(script(0.99))
	}
	test.That(t, p.Current, test.ShouldEqual, NominalCurrent)
}

func TestSimulatorServesTelemetry(t *testing.T) {
	sim := NewSimulator(1, logging.NewBlankLogger("simulator"))
	srv := httptest.NewServer(sim)
	defer srv.Close()

	conn, _, err := ws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	test.That(t, err, test.ShouldBeNil)
	defer conn.Close()

	// ignored: not json, unknown command
	test.That(t, conn.WriteMessage(ws.TextMessage, []byte("hello")), test.ShouldBeNil)
	test.That(t, conn.WriteJSON(Request{Command: "reboot"}), test.ShouldBeNil)
	test.That(t, conn.WriteJSON(Request{Command: CommandGetTelemetry}), test.ShouldBeNil)

	_, data, err := conn.ReadMessage()
	test.That(t, err, test.ShouldBeNil)
	msg, err := Decode(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msg.Joints, test.ShouldResemble, StandingPose())
	test.That(t, *msg.Voltage, test.ShouldBeLessThanOrEqualTo, NominalVoltage)
	test.That(t, *msg.Voltage, test.ShouldBeGreaterThan, NominalVoltage-maxVoltageDip)
	test.That(t, *msg.Current, test.ShouldBeLessThanOrEqualTo, NominalCurrent)

	var raw map[string]interface{}
	test.That(t, json.Unmarshal(data, &raw), test.ShouldBeNil)
	test.That(t, raw, test.ShouldContainKey, "voltage")
	test.That(t, raw, test.ShouldContainKey, "current")
}
