package main

import (
	"time"

	"github.com/ohrlando/stream-list/config"
	"github.com/ohrlando/stream-list/observability"
	"github.com/ohrlando/stream-list/query"
	"github.com/ohrlando/stream-list/util"
	"github.com/ohrlando/stream-list/validation"
	"github.com/ohrlando/stream-list/version"
)

const serviceName = "streamlist"

// Config is the streamlist configuration, loaded from config.yml, .env,
// STREAMLIST_* variables and flags.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// InputConfig selects where records are read from. An empty path or "-"
// reads stdin. An empty format is guessed from the path extension.
type InputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json jsonl yaml csv"`
}

// OutputConfig selects the result encoding.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json jsonl yaml csv"`
}

// TelemetryConfig enables OTLP HTTP export of pipeline spans and metrics.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`

	// ShutdownTimeout bounds the final flush of both exporters.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// defaultConfig returns the values used when no source sets a key.
func defaultConfig() Config {
	tracer := observability.DefaultTracerConfig(serviceName)
	meter := observability.DefaultMeterConfig(serviceName)
	return Config{
		ServiceConfig: config.ServiceConfig{Name: serviceName},
		Telemetry: TelemetryConfig{
			Endpoint:   tracer.Endpoint,
			Insecure:   tracer.Insecure,
			SampleRate: tracer.SampleRate,
			Interval:   meter.Interval,

			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// ApplyDefaults fills values left empty by every config source.
func (c *Config) ApplyDefaults() {
	c.Name = util.Coalesce(c.Name, serviceName)
	c.ServiceConfig.ApplyDefaults()
	c.Output.Format = util.Coalesce(c.Output.Format, string(query.FormatJSON))
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = observability.DefaultMeterConfig(serviceName).Interval
	}
}

// Validate checks the base config, then the struct tags.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}

func (c *Config) tracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: version.Get().Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

func (c *Config) meterConfig() observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: version.Get().Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		Interval:       c.Telemetry.Interval,
	}
}
