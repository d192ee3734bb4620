//go:build linux

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the board description of a Linux USB gadget running the firmware
// core. On microcontroller targets the same facts are compile-time constants.
type Config struct {
	GPIO   GPIOConfig   `yaml:"gpio"`
	USB    USBConfig    `yaml:"usb"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Reboot RebootConfig `yaml:"reboot"`
}

// GPIOConfig maps the status LED and button A to GPIO lines
type GPIOConfig struct {
	Chip            string `yaml:"chip"`
	LED             *int   `yaml:"led"`
	Button          *int   `yaml:"button"`
	ButtonActiveLow *bool  `yaml:"button_active_low"`
	HoldMs          uint32 `yaml:"hold_ms"`
}

// USBConfig locates the gadget controller and its serial function
type USBConfig struct {
	UDC       string `yaml:"udc"` // empty: first controller under SysfsRoot
	SysfsRoot string `yaml:"sysfs_root"`
	TTY       string `yaml:"tty"`
	PollMs    int    `yaml:"poll_ms"`
}

// MQTTConfig enables the status publisher when Broker is set
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// RebootConfig controls what the reset register does
type RebootConfig struct {
	DryRun bool `yaml:"dry_run"`
}

// LoadConfig reads a YAML board file. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := ParseConfig(data, &cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// ParseConfig unmarshals YAML into cfg without applying defaults
func ParseConfig(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = "gpiochip0"
	}
	if cfg.GPIO.LED == nil {
		led := 17
		cfg.GPIO.LED = &led
	}
	if cfg.GPIO.Button == nil {
		button := 27
		cfg.GPIO.Button = &button
	}
	if cfg.GPIO.ButtonActiveLow == nil {
		activeLow := true // button to ground with pull-up
		cfg.GPIO.ButtonActiveLow = &activeLow
	}
	if cfg.GPIO.HoldMs == 0 {
		cfg.GPIO.HoldMs = 2000
	}

	if cfg.USB.SysfsRoot == "" {
		cfg.USB.SysfsRoot = "/sys/class/udc"
	}
	if cfg.USB.TTY == "" {
		cfg.USB.TTY = "/dev/ttyGS0"
	}
	if cfg.USB.PollMs == 0 {
		cfg.USB.PollMs = 20
	}

	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "divafw/status"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "divafw"
	}
}
