package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Normalizes(t *testing.T) {
	cfg := &Config{
		Logging:  LoggingConfig{Level: "debug"},
		Codec:    CodecConfig{Endianness: "BIG"},
		Registry: RegistryConfig{Type: "Badger", Path: "/tmp/x"},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Codec.Endianness != "big" {
		t.Errorf("Expected endianness big, got %q", cfg.Codec.Endianness)
	}
	if cfg.Registry.Type != "badger" {
		t.Errorf("Expected registry type badger, got %q", cfg.Registry.Type)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:         LoggingConfig{Format: "json", Output: "stdout"},
		Server:          ServerConfig{Port: 9000, ReadTimeout: time.Second},
		Telemetry:       TelemetryConfig{SampleRate: 0.25},
		ShutdownTimeout: 5 * time.Second,
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Format != "json" || cfg.Logging.Output != "stdout" {
		t.Errorf("Logging overwritten: %+v", cfg.Logging)
	}
	if cfg.Server.Port != 9000 || cfg.Server.ReadTimeout != time.Second {
		t.Errorf("Server overwritten: %+v", cfg.Server)
	}
	if cfg.Telemetry.SampleRate != 0.25 {
		t.Errorf("SampleRate overwritten: %v", cfg.Telemetry.SampleRate)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout overwritten: %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_KeepsUnlimitedInput(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Codec.MaxInputSize != 0 {
		t.Errorf("Expected zero max_input_size to stay zero, got %v", cfg.Codec.MaxInputSize)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestTracingAndProfilingConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.SampleRate = 0.5

	tc := cfg.TracingConfig("1.2.3")
	if !tc.Enabled || tc.SampleRate != 0.5 || tc.ServiceVersion != "1.2.3" || tc.ServiceName != "binlayout" {
		t.Errorf("Unexpected tracing config: %+v", tc)
	}

	pc := cfg.ProfilingConfig("1.2.3")
	if pc.Enabled || pc.Endpoint != "http://localhost:4040" || len(pc.ProfileTypes) == 0 {
		t.Errorf("Unexpected profiling config: %+v", pc)
	}
}
