package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigFile_ValidYAML(t *testing.T) {
	yaml := `
table_count: 10
people_per_table: 4
prep_servers: 5
transport_servers: 1
finish_servers: 3
transport_workers: 2
finish_workers: 2
prep_time: {min: 15, max: 25}
transport_time: {min: 5, max: 10}
finish_time: {min: 30, max: 40}
transport_batch: {min: 2, max: 8}
poll_interval: 0.5
start_time: "12:00"
seed: 123
`
	f, err := ParseConfigFile([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, f.TableCount)
	assert.Equal(t, 10, *f.TableCount)
	require.NotNil(t, f.PrepTime)
	assert.Equal(t, NewTimeRange(15, 25), *f.PrepTime)
	require.NotNil(t, f.TransportBatch)
	assert.Equal(t, NewLoadRange(2, 8), *f.TransportBatch)
	require.NotNil(t, f.PollInterval)
	assert.Equal(t, 0.5, *f.PollInterval)
	assert.Equal(t, "12:00", f.StartTime)
	require.NotNil(t, f.Seed)
	assert.Equal(t, int64(123), *f.Seed)
}

func TestParseConfigFile_UnknownKey_ReturnsError(t *testing.T) {
	// GIVEN a typo in a key
	_, err := ParseConfigFile([]byte("prep_sevrers: 2\n"))

	// THEN parsing fails instead of silently ignoring it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prep_sevrers")
}

func TestParseConfigFile_EmptyDocument_SetsNothing(t *testing.T) {
	f, err := ParseConfigFile([]byte("{}\n"))
	require.NoError(t, err)

	got, err := f.Apply(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), got)
}

func TestParseConfigFile_ZeroBytesOrComments_SetsNothing(t *testing.T) {
	for name, data := range map[string]string{
		"zero bytes":    "",
		"only comments": "# nothing configured yet\n",
	} {
		t.Run(name, func(t *testing.T) {
			f, err := ParseConfigFile([]byte(data))
			require.NoError(t, err)

			got, err := f.Apply(DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, DefaultConfig(), got)
		})
	}
}

func TestConfigFile_Apply_OverridesOnlySetFields(t *testing.T) {
	// GIVEN a file that sets finish servers, poll interval and the start time
	f, err := ParseConfigFile([]byte("finish_servers: 4\npoll_interval: 0.25\nstart_time: \"09:45\"\n"))
	require.NoError(t, err)

	// WHEN applied over the defaults
	cfg, err := f.Apply(DefaultConfig())

	// THEN those fields change and everything else is preserved
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, 4, cfg.FinishServers)
	assert.Equal(t, 0.25, cfg.PollInterval)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 45, 0, 0, time.UTC), cfg.StartWallClock)
	assert.Equal(t, def.PrepServers, cfg.PrepServers)
	assert.Equal(t, def.PrepTime, cfg.PrepTime)
	assert.Equal(t, def.Seed, cfg.Seed)
}

func TestConfigFile_Apply_BadStartTime_ReturnsBase(t *testing.T) {
	f, err := ParseConfigFile([]byte("seed: 9\nstart_time: \"25:99\"\n"))
	require.NoError(t, err)

	cfg, err := f.Apply(DefaultConfig())

	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "a failed apply must not leak partial changes")
}

func TestParseStartTime_KeepsDate(t *testing.T) {
	day := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

	got, err := ParseStartTime(day, "18:05")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 18, 5, 0, 0, time.UTC), got)
}

func TestLoadConfigFile_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table_count: 2\n"), 0644))

	f, err := LoadConfigFile(path)

	require.NoError(t, err)
	require.NotNil(t, f.TableCount)
	assert.Equal(t, 2, *f.TableCount)
}

func TestLoadConfigFile_Missing_ReturnsError(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
