package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// lightStateMeasurement is the measurement holding light state history.
const lightStateMeasurement = "light_state"

// RecordLightState queues one light state sample. A light without a room is
// tagged room_id="none". Colour is written as colour_r/g/b fields only when set.
//
// It satisfies light.StateRecorder.
func (c *Client) RecordLightState(lightID, roomID string, on bool, colour *[3]uint8) {
	if !c.IsConnected() {
		return
	}

	if roomID == "" {
		roomID = "none"
	}

	fields := map[string]any{"on": on}
	if colour != nil {
		fields["colour_r"] = int64(colour[0])
		fields["colour_g"] = int64(colour[1])
		fields["colour_b"] = int64(colour[2])
	}

	c.writeAPI.WritePoint(write.NewPoint(
		lightStateMeasurement,
		map[string]string{"light_id": lightID, "room_id": roomID},
		fields,
		time.Now(),
	))
}
