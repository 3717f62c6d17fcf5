package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"i4.energy/across/hibergw/modem"
)

// mqttCommandTimeout bounds a single command received over MQTT, including
// sleep retries.
const mqttCommandTimeout = 60 * time.Second

// Bridge executes CommandRequests received on an MQTT topic and publishes a
// CommandReply for each to the topic's "/result" subtopic.
type Bridge struct {
	Logger *slog.Logger
	Modem  *modem.Modem

	config *Config
	client mqtt.Client
}

func NewBridge(config *Config, m *modem.Modem, logger *slog.Logger) *Bridge {
	return &Bridge{
		Logger: logger,
		Modem:  m,
		config: config,
	}
}

// ResultTopic is the topic replies are published to.
func (b *Bridge) ResultTopic() string {
	return b.config.MQTTTopic + "/result"
}

// Start connects to the broker. The command topic is (re)subscribed on
// every connect, so the bridge survives broker restarts.
func (b *Bridge) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.config.MQTTBroker)
	opts.SetClientID(b.config.MQTTClientID)
	if b.config.MQTTUser != "" {
		opts.SetUsername(b.config.MQTTUser)
		opts.SetPassword(b.config.MQTTPass)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.Logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		b.Logger.Info("MQTT connected", "topic", b.config.MQTTTopic)
		if token := c.Subscribe(b.config.MQTTTopic, 0, b.onMessage); token.Wait() && token.Error() != nil {
			b.Logger.Error("MQTT subscribe failed", "topic", b.config.MQTTTopic, "error", token.Error())
		}
	})

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", b.config.MQTTBroker, token.Error())
	}
	return nil
}

// Stop disconnects from the broker, allowing in-flight work 500ms to finish.
func (b *Bridge) Stop() {
	if b.client != nil {
		b.client.Disconnect(500)
	}
}

func (b *Bridge) onMessage(c mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), mqttCommandTimeout)
	defer cancel()

	payload := b.Handle(ctx, msg.Payload())
	token := c.Publish(b.ResultTopic(), 0, false, payload)
	if token.Wait() && token.Error() != nil {
		b.Logger.Error("MQTT publish failed", "topic", b.ResultTopic(), "error", token.Error())
	}
}

// Handle executes one JSON encoded CommandRequest and returns the JSON
// encoded CommandReply.
func (b *Bridge) Handle(ctx context.Context, payload []byte) []byte {
	var (
		req   CommandRequest
		reply CommandReply
	)
	if err := json.Unmarshal(payload, &req); err != nil {
		b.Logger.Warn("MQTT bad payload", "error", err)
		reply.Error = fmt.Sprintf("bad payload: %v", err)
	} else {
		var err error
		reply, err = Execute(ctx, b.Modem, req)
		if err != nil {
			b.Logger.Warn("MQTT command failed", "command", req.Command, "id", req.ID, "error", err)
		}
	}

	out, err := json.Marshal(reply)
	if err != nil {
		b.Logger.Error("MQTT encode reply", "error", err)
		return []byte(`{"error":"internal error"}`)
	}
	return out
}
