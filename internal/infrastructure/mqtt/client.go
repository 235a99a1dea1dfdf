package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for status publishing.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	client   pahomqtt.Client
	cfg      config.MQTTConfig
	clientID string

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Configures Last Will and Testament (LWT) for offline detection
//  3. Attempts the initial connection with a short timeout
//  4. Publishes online status on every (re)connect
//
// Parameters:
//   - cfg: MQTT configuration from the agent config file
//   - clientID: Device identity, used in the topic and MQTT client id
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If initial connection fails within timeout
func Connect(cfg config.MQTTConfig, clientID string) (*Client, error) {
	opts := buildClientOptions(cfg, clientID)
	configureLWT(opts, clientID)

	c := &Client{
		cfg:      cfg,
		clientID: clientID,
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, _ error) {
		c.setConnected(false)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously and may not have executed yet.
	c.setConnected(true)

	return c, nil
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect() {
	c.setConnected(true)
	payload := NewStatusPayload("online", c.clientID, "", time.Now())
	c.client.Publish(Topics{}.Status(c.clientID), byte(c.cfg.QoS), true, payload)
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// Close publishes a graceful offline status and disconnects.
//
// Returns:
//   - error: Always nil; a closed connection is not an error
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		payload := NewStatusPayload("offline", c.clientID, "graceful_shutdown", time.Now())
		token := c.client.Publish(Topics{}.Status(c.clientID), byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// ClientID returns the device identity this client publishes for.
func (c *Client) ClientID() string {
	return c.clientID
}
