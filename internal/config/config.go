package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the addon folder.
const FileName = "spotting_engine.cfg.json"

// KindNames lists the target kinds with per-kind spotting configuration.
var KindNames = []string{
	"infantry",
	"fortification",
	"lightVehicle",
	"armor",
	"aircraft",
	"emplacement",
	"sensor",
}

var kindDefaults = map[string]KindConfig{
	"infantry":      {Duration: 12 * time.Second, TickFrequency: 250 * time.Millisecond, Effect: "spot_infantry", Offset: Offset{Z: 2}},
	"fortification": {Duration: 12 * time.Second, TickFrequency: time.Second, Effect: "spot_fortification", Offset: Offset{Z: 4}},
	"lightVehicle":  {Duration: 20 * time.Second, TickFrequency: 250 * time.Millisecond, Effect: "spot_light_vehicle", Offset: Offset{Z: 3}},
	"armor":         {Duration: 30 * time.Second, TickFrequency: 250 * time.Millisecond, Effect: "spot_armor", Offset: Offset{Z: 4}},
	"aircraft":      {Duration: 30 * time.Second, TickFrequency: 100 * time.Millisecond, Effect: "spot_aircraft", Offset: Offset{Z: 5}},
	"emplacement":   {Duration: 20 * time.Second, TickFrequency: time.Second, Effect: "spot_emplacement", Offset: Offset{Z: 3}},
	"sensor":        {Duration: 15 * time.Second, TickFrequency: 500 * time.Millisecond, Effect: "spot_sensor", Offset: Offset{Z: 2}},
}

// Offset is a marker offset in metres.
type Offset struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	Z float64 `json:"z" mapstructure:"z"`
}

// KindConfig holds the static spotting settings for one target kind.
type KindConfig struct {
	Duration      time.Duration `json:"duration" mapstructure:"duration"`
	TickFrequency time.Duration `json:"tickFrequency" mapstructure:"tickFrequency"`
	Effect        string        `json:"effect" mapstructure:"effect"`
	Offset        Offset        `json:"offset" mapstructure:"offset"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// PostgresConfig holds postgres connection settings
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig holds journal storage backend configuration
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	Memory   MemoryConfig   `json:"memory" mapstructure:"memory"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"-" mapstructure:"-"`
}

// IconConfig selects the icon sinks driven by the engine.
type IconConfig struct {
	CallbackEnabled  bool
	WebsocketEnabled bool
	WebsocketURL     string
	WebsocketSecret  string
}

// NotifyConfig selects the spot notification sinks.
type NotifyConfig struct {
	ChatEnabled       bool
	NATSEnabled       bool
	NATSURL           string
	NATSSubjectPrefix string
}

// InfluxConfig holds InfluxDB connection settings.
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// OTelConfig holds OpenTelemetry configuration.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// MonitorConfig controls the periodic status writer.
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("remoteLogLevel", "info")
	viper.SetDefault("logsDir", "./spottinglogs")

	for name, k := range kindDefaults {
		prefix := "spotting.kinds." + name + "."
		viper.SetDefault(prefix+"duration", k.Duration.String())
		viper.SetDefault(prefix+"tickFrequency", k.TickFrequency.String())
		viper.SetDefault(prefix+"effect", k.Effect)
		viper.SetDefault(prefix+"offset.x", k.Offset.X)
		viper.SetDefault(prefix+"offset.y", k.Offset.Y)
		viper.SetDefault(prefix+"offset.z", k.Offset.Z)
	}

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./spottings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "spotting")

	viper.SetDefault("icons.callback.enabled", true)
	viper.SetDefault("icons.websocket.enabled", false)
	viper.SetDefault("icons.websocket.url", "ws://localhost:5000/api/v1/icons/ws")
	viper.SetDefault("icons.websocket.secret", "")

	viper.SetDefault("notify.chat.enabled", true)
	viper.SetDefault("notify.nats.enabled", false)
	viper.SetDefault("notify.nats.url", "nats://127.0.0.1:4222")
	viper.SetDefault("notify.nats.subjectPrefix", "spotting.events")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "spotting-metrics")
	viper.SetDefault("influx.bucket", "spotting")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "spotting-engine")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "1s")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetKindConfigs returns the spotting settings for every configured kind.
// Keys under spotting.kinds that are not in KindNames are returned too, so the
// caller can reject them.
func GetKindConfigs() map[string]KindConfig {
	// viper lower-cases keys; map them back to the canonical names.
	names := make(map[string]string, len(KindNames))
	for _, n := range KindNames {
		names[strings.ToLower(n)] = n
	}
	for n := range viper.GetStringMap("spotting.kinds") {
		if _, ok := names[strings.ToLower(n)]; !ok {
			names[strings.ToLower(n)] = n
		}
	}

	out := make(map[string]KindConfig, len(names))
	for key, name := range names {
		prefix := "spotting.kinds." + key
		if !viper.IsSet(prefix) {
			continue
		}
		out[name] = KindConfig{
			Duration:      viper.GetDuration(prefix + ".duration"),
			TickFrequency: viper.GetDuration(prefix + ".tickFrequency"),
			Effect:        viper.GetString(prefix + ".effect"),
			Offset: Offset{
				X: viper.GetFloat64(prefix + ".offset.x"),
				Y: viper.GetFloat64(prefix + ".offset.y"),
				Z: viper.GetFloat64(prefix + ".offset.z"),
			},
		}
	}
	return out
}

// GetStorageConfig returns the storage configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetIconConfig returns the icon sink configuration.
func GetIconConfig() IconConfig {
	return IconConfig{
		CallbackEnabled:  viper.GetBool("icons.callback.enabled"),
		WebsocketEnabled: viper.GetBool("icons.websocket.enabled"),
		WebsocketURL:     viper.GetString("icons.websocket.url"),
		WebsocketSecret:  viper.GetString("icons.websocket.secret"),
	}
}

// GetNotifyConfig returns the notification sink configuration.
func GetNotifyConfig() NotifyConfig {
	return NotifyConfig{
		ChatEnabled:       viper.GetBool("notify.chat.enabled"),
		NATSEnabled:       viper.GetBool("notify.nats.enabled"),
		NATSURL:           viper.GetString("notify.nats.url"),
		NATSSubjectPrefix: viper.GetString("notify.nats.subjectPrefix"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetMonitorConfig returns the status monitor configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:  viper.GetBool("monitor.enabled"),
		Interval: viper.GetDuration("monitor.interval"),
	}
}
