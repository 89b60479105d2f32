package profile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plainlog/plainlog/core"
)

func TestBuild_DefaultProfile(t *testing.T) {
	var buf bytes.Buffer
	l, err := Build(Config{Stream: &buf})
	require.NoError(t, err)
	defer l.Core().Close(time.Second)

	l.Info("hello")
	require.NoError(t, l.Core().Sync(time.Second))

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "INFO")
}

func TestBuild_CloudProfileEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := Build(Config{Profile: "cloud", Stream: &buf})
	require.NoError(t, err)
	defer l.Core().Close(time.Second)

	l.Info("structured")
	require.NoError(t, l.Core().Sync(time.Second))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "structured", parsed["message"])
}

func TestBuild_LevelGatesHandler(t *testing.T) {
	var buf bytes.Buffer
	l, err := Build(Config{Profile: "simple", Level: "warning", Stream: &buf})
	require.NoError(t, err)
	defer l.Core().Close(time.Second)

	l.Info("quiet")
	l.Warning("loud")
	require.NoError(t, l.Core().Sync(time.Second))

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestBuild_FingersCrossedFileProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := Build(Config{
		Profile:     "fingerscrossed_file",
		Filename:    path,
		ActionLevel: "error",
		BufferSize:  10,
	})
	require.NoError(t, err)

	l.Info("buffered")
	require.NoError(t, l.Core().Sync(time.Second))

	// Nothing on disk until the trigger.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	l.Error("trigger")
	require.NoError(t, l.Core().Close(2*time.Second))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "buffered")
	assert.Contains(t, string(data), "trigger")
}

func TestBuild_FileProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := Build(Config{Profile: "file", Filename: path})
	require.NoError(t, err)

	l.Info("to disk")
	require.NoError(t, l.Core().Close(2*time.Second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to disk")
}

func TestBuild_NothingProfile(t *testing.T) {
	l, err := Build(Config{Profile: "nothing"})
	require.NoError(t, err)
	defer l.Core().Close(time.Second)

	l.Critical("into the void")
	assert.False(t, l.Core().Enabled(core.CriticalLevel))
	assert.Empty(t, l.Core().Handlers())
}

func TestBuild_UnknownProfile(t *testing.T) {
	_, err := Build(Config{Profile: "does-not-exist"})
	assert.Error(t, err)
}

func TestBuild_InvalidLevel(t *testing.T) {
	_, err := Build(Config{Level: "loudest"})
	assert.ErrorIs(t, err, core.ErrUnknownLevel)
}

func TestBuild_AllStreamProfiles(t *testing.T) {
	for _, name := range []string{"default", "simple", "cloud", "json", "console_no_color", "fast"} {
		var buf bytes.Buffer
		l, err := Build(Config{Profile: name, Stream: &buf})
		require.NoError(t, err, "profile %q", name)

		l.Warning("probe")
		require.NoError(t, l.Core().Close(2*time.Second), "profile %q", name)
		assert.Contains(t, buf.String(), "probe", "profile %q", name)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PLAINLOG_PROFILE", "cloud")
	t.Setenv("PLAINLOG_LEVEL", "warning")
	t.Setenv("PLAINLOG_BUFFER_SIZE", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cloud", cfg.Profile)
	assert.Equal(t, "warning", cfg.Level)
	assert.Equal(t, 7, cfg.BufferSize)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plainlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: file\nlevel: debug\nfilename: from-file.log\n"), 0600))

	t.Setenv("PLAINLOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Profile)
	assert.Equal(t, "error", cfg.Level, "environment wins over the file")
	assert.Equal(t, "from-file.log", cfg.Filename)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Profile)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PLAINLOG_PROFILE", "nothing")

	l, err := FromEnv()
	require.NoError(t, err)
	defer l.Core().Close(time.Second)

	assert.Empty(t, l.Core().Handlers())
}
