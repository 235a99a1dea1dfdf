// Package mqtt publishes agent status to an MQTT broker.
//
// The agent only publishes; it subscribes to nothing. Each device announces
// itself on a retained status topic and registers a Last Will so the broker
// marks it offline if the agent dies or the device resets mid-cycle:
//
//	sensoragent/<client_id>/status   retained, {"status":"online"|"ok"|"failed"|"offline",...}
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.Status.MQTT, clientID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(mqtt.Topics{}.Status(clientID), payload)
//
// The broker is optional infrastructure: callers treat a failed Connect as
// "no remote indicator" rather than a boot failure.
package mqtt
