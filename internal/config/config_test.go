package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "info", viper.GetString("remoteLogLevel"))
	assert.Equal(t, "./spottinglogs", viper.GetString("logsDir"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "spotting", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./spottings", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, true, viper.GetBool("icons.callback.enabled"))
	assert.Equal(t, false, viper.GetBool("icons.websocket.enabled"))
	assert.Equal(t, true, viper.GetBool("notify.chat.enabled"))
	assert.Equal(t, "spotting.events", viper.GetString("notify.nats.subjectPrefix"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "spotting-engine", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
	assert.Equal(t, true, viper.GetBool("monitor.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetKindConfigs_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	kinds := GetKindConfigs()
	require.Len(t, kinds, len(KindNames))

	tests := []struct {
		kind     string
		duration time.Duration
	}{
		{"infantry", 12 * time.Second},
		{"fortification", 12 * time.Second},
		{"lightVehicle", 20 * time.Second},
		{"armor", 30 * time.Second},
		{"aircraft", 30 * time.Second},
		{"emplacement", 20 * time.Second},
		{"sensor", 15 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			k, ok := kinds[tt.kind]
			require.True(t, ok)
			assert.Equal(t, tt.duration, k.Duration)
			assert.Positive(t, k.TickFrequency)
			assert.NotEmpty(t, k.Effect)
		})
	}
	assert.Equal(t, Offset{Z: 2}, kinds["infantry"].Offset)
}

func TestGetKindConfigs_PartialOverrideKeepsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"spotting": { "kinds": {
			"armor": { "duration": "45s", "offset": { "z": 6 } },
			"hovercraft": { "duration": "10s" }
		} }
	}`)))

	kinds := GetKindConfigs()

	armor := kinds["armor"]
	assert.Equal(t, 45*time.Second, armor.Duration)
	assert.Equal(t, "spot_armor", armor.Effect, "unset leaves keep their default")
	assert.Equal(t, 250*time.Millisecond, armor.TickFrequency)
	assert.Equal(t, 6.0, armor.Offset.Z)

	assert.Equal(t, 12*time.Second, kinds["infantry"].Duration)

	unknown, ok := kinds["hovercraft"]
	require.True(t, ok, "unknown kinds are surfaced for validation")
	assert.Equal(t, 10*time.Second, unknown.Duration)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./spottings", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "/tmp/j.db", "dumpInterval": "10m" }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/j.db", sc.SQLite.Path)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
}

func TestGetSinkConfigs(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"icons": { "websocket": { "enabled": true, "url": "ws://relay:9000/ws", "secret": "s3" } },
		"notify": { "nats": { "enabled": true, "url": "nats://broker:4222" } },
		"influx": { "enabled": true, "bucket": "b" },
		"monitor": { "interval": "5s" }
	}`)))

	ic := GetIconConfig()
	assert.True(t, ic.CallbackEnabled)
	assert.True(t, ic.WebsocketEnabled)
	assert.Equal(t, "ws://relay:9000/ws", ic.WebsocketURL)
	assert.Equal(t, "s3", ic.WebsocketSecret)

	nc := GetNotifyConfig()
	assert.True(t, nc.ChatEnabled)
	assert.True(t, nc.NATSEnabled)
	assert.Equal(t, "nats://broker:4222", nc.NATSURL)
	assert.Equal(t, "spotting.events", nc.NATSSubjectPrefix)

	inf := GetInfluxConfig()
	assert.True(t, inf.Enabled)
	assert.Equal(t, "b", inf.Bucket)
	assert.Equal(t, "spotting-metrics", inf.Org)

	mc := GetMonitorConfig()
	assert.True(t, mc.Enabled)
	assert.Equal(t, 5*time.Second, mc.Interval)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	oc := GetOTelConfig()
	assert.False(t, oc.Enabled)
	assert.Equal(t, "spotting-engine", oc.ServiceName)
	assert.Equal(t, 5*time.Second, oc.BatchTimeout)
	assert.Equal(t, "", oc.Endpoint)
	assert.True(t, oc.Insecure)
}
