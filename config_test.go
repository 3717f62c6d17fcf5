package main

import (
	"errors"
	"flag"
	"testing"

	"i4.energy/across/hibergw/modem"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(WithDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.BaudRate != 19200 {
		t.Errorf("expected default baud rate 19200, got %d", config.BaudRate)
	}
	if config.MQTTBroker != "" {
		t.Errorf("expected MQTT to be disabled by default, got broker %q", config.MQTTBroker)
	}
	if config.MQTTTopic != "hiber/cmd" {
		t.Errorf("unexpected default topic %q", config.MQTTTopic)
	}
	if config.MQTTClientID != "hibergw" {
		t.Errorf("unexpected default client id %q", config.MQTTClientID)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	t.Setenv("SERIAL_PORT", "/dev/ttyAMA0")
	t.Setenv("BAUD_RATE", "9600")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_USERNAME", "gateway")
	t.Setenv("MQTT_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "debug")

	fSet := flag.NewFlagSet("test", flag.ContinueOnError)
	fSet.Int("baud-rate", 19200, "")
	fSet.String("mqtt-topic", "hiber/cmd", "")
	fSet.String("bind-address", "0.0.0.0:8080", "")
	if err := fSet.Parse([]string{"-baud-rate", "115200", "-mqtt-topic", "site1/modem"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(fSet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// flags win over the environment, unset flags leave it alone
	if config.BaudRate != 115200 {
		t.Errorf("expected baud rate from flags, got %d", config.BaudRate)
	}
	if config.BindAddress != "0.0.0.0:8080" {
		t.Errorf("expected default bind address, got %q", config.BindAddress)
	}
	if config.SerialPort != "/dev/ttyAMA0" {
		t.Errorf("expected serial port from env, got %q", config.SerialPort)
	}
	if config.MQTTTopic != "site1/modem" {
		t.Errorf("expected topic from flags, got %q", config.MQTTTopic)
	}
	if config.MQTTBroker != "tcp://broker:1883" || config.MQTTUser != "gateway" || config.MQTTPass != "secret" {
		t.Errorf("unexpected MQTT settings: %+v", config)
	}
	if config.LogLevel != "debug" {
		t.Errorf("expected log level from env, got %q", config.LogLevel)
	}
}

func TestLoadConfigInvalidBaudRate(t *testing.T) {
	t.Setenv("BAUD_RATE", "12345")

	_, err := LoadConfig(WithDefaults(), WithEnv())
	if !errors.Is(err, modem.ErrInvalidBaudRate) {
		t.Errorf("expected ErrInvalidBaudRate, got: %v", err)
	}
}

func TestLoadConfigOptionError(t *testing.T) {
	optErr := errors.New("broken option")
	_, err := LoadConfig(WithDefaults(), func(*Config) error { return optErr })
	if !errors.Is(err, optErr) {
		t.Errorf("expected option error, got: %v", err)
	}
}

func TestLoadConfigInvalidSerialPort(t *testing.T) {
	t.Setenv("SERIAL_PORT", "ttyUSB0")

	_, err := LoadConfig(WithDefaults(), WithEnv())
	if !errors.Is(err, modem.ErrInvalidPortName) {
		t.Errorf("expected ErrInvalidPortName, got: %v", err)
	}
}
