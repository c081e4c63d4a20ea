package viewer

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/ggldnl/hexviz/telemetry"
)

// powerWindow is how many recent samples the power summary covers.
const powerWindow = 50

// TelemetryState is what the dashboard shows about the live connection. Joints,
// voltage and current are those of the last message; absent fields are nil.
type TelemetryState struct {
	Connected bool               `json:"connected"`
	URL       string             `json:"url,omitempty"`
	Joints    map[string]float64 `json:"joints,omitempty"`
	Voltage   *float64           `json:"voltage,omitempty"`
	Current   *float64           `json:"current,omitempty"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
	Stats     telemetry.Stats    `json:"stats"`
	Power     *PowerSummary      `json:"power,omitempty"`
}

// PowerSummary aggregates the recent voltage and current samples.
type PowerSummary struct {
	Samples     int     `json:"samples"`
	MeanVoltage float64 `json:"mean_voltage"`
	MinVoltage  float64 `json:"min_voltage"`
	MeanCurrent float64 `json:"mean_current"`
	MaxCurrent  float64 `json:"max_current"`
}

// powerHistory is a sliding window of power samples.
type powerHistory struct {
	voltage []float64
	current []float64
}

func (h *powerHistory) add(msg *telemetry.Message) {
	if msg.Voltage != nil {
		h.voltage = appendWindow(h.voltage, *msg.Voltage)
	}
	if msg.Current != nil {
		h.current = appendWindow(h.current, *msg.Current)
	}
}

func (h *powerHistory) reset() {
	h.voltage = nil
	h.current = nil
}

func appendWindow(window []float64, v float64) []float64 {
	window = append(window, v)
	if len(window) > powerWindow {
		window = window[len(window)-powerWindow:]
	}
	return window
}

// summary returns nil until at least one voltage and one current sample arrived.
func (h *powerHistory) summary() *PowerSummary {
	if len(h.voltage) == 0 || len(h.current) == 0 {
		return nil
	}
	// stats only errors on empty input, which is excluded above.
	meanV, _ := stats.Mean(h.voltage)
	minV, _ := stats.Min(h.voltage)
	meanC, _ := stats.Mean(h.current)
	maxC, _ := stats.Max(h.current)
	samples := len(h.voltage)
	if len(h.current) < samples {
		samples = len(h.current)
	}
	return &PowerSummary{
		Samples:     samples,
		MeanVoltage: meanV,
		MinVoltage:  minV,
		MeanCurrent: meanC,
		MaxCurrent:  maxC,
	}
}
