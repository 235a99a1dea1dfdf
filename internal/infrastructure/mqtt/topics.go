package mqtt

import "fmt"

// TopicPrefix is the base for all agent topics.
const TopicPrefix = "sensoragent"

// Topics provides builders for agent MQTT topics.
type Topics struct{}

// Status returns the retained status topic for a device.
//
// Example: sensoragent/3f2c9a1e-.../status
func (Topics) Status(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, clientID)
}
