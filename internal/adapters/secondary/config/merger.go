package config

import (
	"os"
	"strconv"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if path, ok := flags["db"].(string); ok && path != "" {
		result.Storage.Path = path
	}

	if remote, ok := flags["remote"].(string); ok && remote != "" {
		result.Storage.RemoteURL = remote
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("VERSELY_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("VERSELY_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if env := os.Getenv("VERSELY_ENV"); env != "" {
		result.Server.Environment = env
	}

	if path := os.Getenv("VERSELY_DB"); path != "" {
		result.Storage.Path = path
	}

	if remote := os.Getenv("VERSELY_REMOTE_URL"); remote != "" {
		result.Storage.RemoteURL = remote
	}

	if debounceStr := os.Getenv("VERSELY_DEBOUNCE_MS"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Editor.DebounceMs = debounce
		}
	}

	if cycleStr := os.Getenv("VERSELY_CYCLE_MS"); cycleStr != "" {
		if cycle, err := strconv.Atoi(cycleStr); err == nil && cycle > 0 {
			result.Display.CycleIntervalMs = cycle
		}
	}

	if level := os.Getenv("VERSELY_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	if source.Storage.Path != "" {
		target.Storage.Path = source.Storage.Path
	}
	if source.Storage.RemoteURL != "" {
		target.Storage.RemoteURL = source.Storage.RemoteURL
	}

	if source.Editor.DebounceMs != 0 {
		target.Editor.DebounceMs = source.Editor.DebounceMs
	}

	if source.Display.CycleIntervalMs != 0 {
		target.Display.CycleIntervalMs = source.Display.CycleIntervalMs
	}

	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Server:  src.Server,
		Storage: src.Storage,
		Editor:  src.Editor,
		Display: src.Display,
		Logging: src.Logging,
	}

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
