package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface selectors accepted in the device section. "com" is an alias
// for the serial line.
const (
	InterfaceUDP    = "udp"
	InterfaceSerial = "serial"
	InterfaceCOM    = "com"
)

// Config is the full application configuration.
type Config struct {
	Device     DeviceConfig     `mapstructure:"device"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Bot        BotConfig        `mapstructure:"bot"`
}

// DeviceConfig selects and parameterizes the transport.
type DeviceConfig struct {
	Interface      string  `mapstructure:"interface"` // udp | serial | com
	Host           string  `mapstructure:"host"`
	Port           int     `mapstructure:"port"`
	SerialPort     string  `mapstructure:"serial_port"`
	Baudrate       int     `mapstructure:"baudrate"`
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
}

// Timeout returns the exchange deadline as a duration.
func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds * float64(time.Second))
}

// MonitoringConfig drives the polling loop and the reading log.
type MonitoringConfig struct {
	PeriodSeconds float64 `mapstructure:"period_seconds"`
	LogFile       string  `mapstructure:"log_file"`
	MaxLogSizeMB  int     `mapstructure:"max_log_size_mb"`
	MaxLogFiles   int     `mapstructure:"max_log_files"`
}

// Period returns the polling period as a duration.
func (m MonitoringConfig) Period() time.Duration {
	return time.Duration(m.PeriodSeconds * float64(time.Second))
}

// MaxLogSizeBytes returns the rotation threshold in bytes.
func (m MonitoringConfig) MaxLogSizeBytes() int64 {
	return int64(m.MaxLogSizeMB) * 1024 * 1024
}

// LoggingConfig configures the process log (not the reading log).
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// HTTPConfig configures the optional status API.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

// BotConfig configures the Telegram front end.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// Load reads the configuration from path, or from the default search paths
// when path is empty. A missing file in the default search is not an error:
// the built-in defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/device_monitor")
		v.AddConfigPath("$HOME/.config/device_monitor")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.interface", InterfaceUDP)
	v.SetDefault("device.host", "127.0.0.1")
	v.SetDefault("device.port", 10000)
	v.SetDefault("device.serial_port", "ttyACM0")
	v.SetDefault("device.baudrate", 115200)
	v.SetDefault("device.timeout_seconds", 5.0)

	v.SetDefault("monitoring.period_seconds", 2.0)
	v.SetDefault("monitoring.log_file", "device_data.json")
	v.SetDefault("monitoring.max_log_size_mb", 10)
	v.SetDefault("monitoring.max_log_files", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "device_monitor.log")

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.port", "8080")
}

// normalize lowercases the interface selector so validation and transport
// selection see a canonical value.
func (c *Config) normalize() {
	c.Device.Interface = strings.ToLower(strings.TrimSpace(c.Device.Interface))
}

func (c *Config) validate() error {
	switch c.Device.Interface {
	case InterfaceUDP:
		if c.Device.Port < 1 || c.Device.Port > 65535 {
			return fmt.Errorf("config: device.port %d out of range", c.Device.Port)
		}
	case InterfaceSerial, InterfaceCOM:
		if c.Device.SerialPort == "" {
			return errors.New("config: device.serial_port is required for a serial interface")
		}
		if c.Device.Baudrate <= 0 {
			return fmt.Errorf("config: device.baudrate %d must be > 0", c.Device.Baudrate)
		}
	default:
		return fmt.Errorf("config: unsupported device.interface %q", c.Device.Interface)
	}

	if c.Device.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: device.timeout_seconds %v must be > 0", c.Device.TimeoutSeconds)
	}
	if c.Monitoring.PeriodSeconds <= 0 {
		return fmt.Errorf("config: monitoring.period_seconds %v must be > 0", c.Monitoring.PeriodSeconds)
	}
	if c.Monitoring.LogFile == "" {
		return errors.New("config: monitoring.log_file must not be empty")
	}
	if c.Monitoring.MaxLogFiles < 1 {
		return fmt.Errorf("config: monitoring.max_log_files %d must be >= 1", c.Monitoring.MaxLogFiles)
	}
	return nil
}
