// Package config holds the run-scoped pipeline configuration.
//
// A Config is assembled once at startup from CLI flags plus an optional YAML
// file and is immutable for the duration of the run. It is threaded
// explicitly through every component constructor; nothing reads it as global
// state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// VerificationEnv selects how the verify phase gets its clean environment.
type VerificationEnv string

const (
	// EnvDocker runs verification commands inside a disposable container.
	EnvDocker VerificationEnv = "docker"
	// EnvTempDir runs verification commands in a fresh temp directory.
	EnvTempDir VerificationEnv = "tempdir"
	// EnvCustom defers entirely to user-supplied verification instructions.
	EnvCustom VerificationEnv = "custom"
)

// Config is the immutable run configuration.
type Config struct {
	CodeRepoPath   string
	DocsRepoPath   string
	TargetDocFiles []string

	MaxIterations int
	BaseBranch    string

	DockerImage     string
	VerificationEnv VerificationEnv
	// VerificationInstructions replaces the default environment description
	// in the verifier's instruction when non-empty.
	VerificationInstructions string

	// UserContext is free-text guidance from the developer about what changed
	// or where to focus.
	UserContext string

	CreatePR bool
	DryRun   bool
	Verbose  bool
	Model    string
}

// Options carries the raw CLI inputs before resolution.
type Options struct {
	CodeRepo                 string
	DocsRepo                 string
	DocFiles                 []string
	ConfigFile               string
	MaxIterations            int
	BaseBranch               string
	DockerImage              string
	NoDocker                 bool
	VerificationInstructions string // path to instructions file
	Context                  string
	ContextFile              string
	CreatePR                 bool
	DryRun                   bool
	Verbose                  bool
	Model                    string
}

// fileConfig is the YAML config file shape. File values fill in only what the
// flags left unset.
type fileConfig struct {
	DockerImage              string   `yaml:"docker_image"`
	BaseBranch               string   `yaml:"base_branch"`
	DocFiles                 []string `yaml:"doc_files"`
	MaxIterations            int      `yaml:"max_iterations"`
	Model                    string   `yaml:"model"`
	VerificationInstructions string   `yaml:"verification_instructions"`
}

// Load resolves Options into a Config, overlaying the YAML file and reading
// the context and verification-instruction files.
func Load(opts Options) (*Config, error) {
	if opts.CodeRepo == "" {
		return nil, fmt.Errorf("code repo path is required")
	}
	if opts.DocsRepo == "" {
		return nil, fmt.Errorf("docs repo path is required")
	}

	var fc fileConfig
	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	codeRepo, err := filepath.Abs(opts.CodeRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve code repo path: %w", err)
	}
	docsRepo, err := filepath.Abs(opts.DocsRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve docs repo path: %w", err)
	}

	docFiles := opts.DocFiles
	if len(docFiles) == 0 {
		docFiles = fc.DocFiles
	}
	if len(docFiles) == 0 {
		docFiles = []string{"docs/getting-started.md"}
	}

	maxIterations := opts.MaxIterations
	if maxIterations == 0 {
		maxIterations = fc.MaxIterations
	}
	if maxIterations <= 0 {
		maxIterations = 3
	}

	baseBranch := firstNonEmpty(opts.BaseBranch, fc.BaseBranch, "main")
	model := firstNonEmpty(opts.Model, fc.Model, "opus")

	// Custom verification instructions, from a file path given on the CLI or
	// in the config file.
	instructions := ""
	instrPath := firstNonEmpty(opts.VerificationInstructions, fc.VerificationInstructions)
	if instrPath != "" {
		data, err := os.ReadFile(instrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read verification instructions: %w", err)
		}
		instructions = strings.TrimSpace(string(data))
	}

	// User context: file takes precedence over the inline flag.
	userContext := opts.Context
	if opts.ContextFile != "" {
		data, err := os.ReadFile(opts.ContextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		userContext = strings.TrimSpace(string(data))
	}

	var env VerificationEnv
	switch {
	case instructions != "":
		env = EnvCustom
	case opts.NoDocker:
		env = EnvTempDir
	default:
		env = EnvDocker
	}

	return &Config{
		CodeRepoPath:             codeRepo,
		DocsRepoPath:             docsRepo,
		TargetDocFiles:           docFiles,
		MaxIterations:            maxIterations,
		BaseBranch:               baseBranch,
		DockerImage:              firstNonEmpty(opts.DockerImage, fc.DockerImage),
		VerificationEnv:          env,
		VerificationInstructions: instructions,
		UserContext:              userContext,
		CreatePR:                 opts.CreatePR,
		DryRun:                   opts.DryRun,
		Verbose:                  opts.Verbose,
		Model:                    model,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
