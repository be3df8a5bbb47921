package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		CodeRepo: t.TempDir(),
		DocsRepo: t.TempDir(),
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(baseOptions(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/getting-started.md"}, cfg.TargetDocFiles)
	assert.Equal(t, 3, cfg.MaxIterations)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.Equal(t, "opus", cfg.Model)
	assert.Equal(t, EnvDocker, cfg.VerificationEnv)
	assert.True(t, filepath.IsAbs(cfg.CodeRepoPath))
	assert.True(t, filepath.IsAbs(cfg.DocsRepoPath))
}

func TestLoadRequiresRepoPaths(t *testing.T) {
	_, err := Load(Options{DocsRepo: "/tmp/docs"})
	assert.Error(t, err)

	_, err = Load(Options{CodeRepo: "/tmp/code"})
	assert.Error(t, err)
}

func TestLoadYAMLOverlay(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docdrift.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
docker_image: golang:1.25
base_branch: develop
doc_files:
  - docs/install.md
  - docs/deploy.md
max_iterations: 5
model: sonnet
`), 0644))

	opts := baseOptions(t)
	opts.ConfigFile = configPath

	cfg, err := Load(opts)
	require.NoError(t, err)

	assert.Equal(t, "golang:1.25", cfg.DockerImage)
	assert.Equal(t, "develop", cfg.BaseBranch)
	assert.Equal(t, []string{"docs/install.md", "docs/deploy.md"}, cfg.TargetDocFiles)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "sonnet", cfg.Model)
}

func TestLoadFlagsBeatFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docdrift.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
base_branch: develop
max_iterations: 5
doc_files: [docs/from-file.md]
`), 0644))

	opts := baseOptions(t)
	opts.ConfigFile = configPath
	opts.BaseBranch = "release"
	opts.MaxIterations = 2
	opts.DocFiles = []string{"docs/from-flag.md"}

	cfg, err := Load(opts)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.BaseBranch)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, []string{"docs/from-flag.md"}, cfg.TargetDocFiles)
}

func TestLoadContextFileWinsOverInline(t *testing.T) {
	contextPath := filepath.Join(t.TempDir(), "context.md")
	require.NoError(t, os.WriteFile(contextPath, []byte("We migrated from pip to uv.\n"), 0644))

	opts := baseOptions(t)
	opts.Context = "inline context"
	opts.ContextFile = contextPath

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "We migrated from pip to uv.", cfg.UserContext)
}

func TestLoadMissingContextFile(t *testing.T) {
	opts := baseOptions(t)
	opts.ContextFile = filepath.Join(t.TempDir(), "missing.md")

	_, err := Load(opts)
	assert.Error(t, err)
}

func TestLoadVerificationEnvSelection(t *testing.T) {
	instrPath := filepath.Join(t.TempDir(), "verify.md")
	require.NoError(t, os.WriteFile(instrPath, []byte("Run make check in a clean venv.\n"), 0644))

	t.Run("custom instructions override everything", func(t *testing.T) {
		opts := baseOptions(t)
		opts.VerificationInstructions = instrPath
		cfg, err := Load(opts)
		require.NoError(t, err)
		assert.Equal(t, EnvCustom, cfg.VerificationEnv)
		assert.Equal(t, "Run make check in a clean venv.", cfg.VerificationInstructions)
	})

	t.Run("no docker selects tempdir", func(t *testing.T) {
		opts := baseOptions(t)
		opts.NoDocker = true
		cfg, err := Load(opts)
		require.NoError(t, err)
		assert.Equal(t, EnvTempDir, cfg.VerificationEnv)
	})
}

func TestLoadNegativeIterationsClampedToDefault(t *testing.T) {
	opts := baseOptions(t)
	opts.MaxIterations = -1
	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxIterations)
}
