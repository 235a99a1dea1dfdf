package telemetry

import (
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-sensor/internal/sensor"
)

// deviceTag is the tag key carrying the device identity.
const deviceTag = "device"

// Point is a wire-ready metric point.
type Point struct {
	Measurement string
	Device      string
	Fields      []sensor.Field
}

// NewPoint builds the point for one reading.
func NewPoint(measurement, clientID string, r sensor.Reading) Point {
	return Point{
		Measurement: measurement,
		Device:      clientID,
		Fields:      r.Fields,
	}
}

// Line formats the point as InfluxDB line protocol without a timestamp.
//
// Format: measurement,device=<id> field1=v1[,field2=v2]
func (p Point) Line() string {
	var b strings.Builder

	b.WriteString(escapeMeasurement(p.Measurement))
	b.WriteByte(',')
	b.WriteString(deviceTag)
	b.WriteByte('=')
	b.WriteString(escapeTag(p.Device))

	b.WriteByte(' ')
	for i, f := range p.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeTag(f.Name))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(f.Value, 'f', 1, 64))
	}

	return b.String()
}

// Encode formats a reading for measurement, tagged with clientID.
// Fields keep the reading's order.
func Encode(measurement, clientID string, r sensor.Reading) string {
	return NewPoint(measurement, clientID, r).Line()
}

// escapeTag escapes special characters in tag keys/values per line protocol rules.
// Commas, equals signs, and spaces must be backslash-escaped.
// Newlines are stripped to prevent line protocol injection.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// escapeMeasurement escapes special characters in measurement names.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
