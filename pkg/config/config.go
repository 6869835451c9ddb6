// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config implements ResolvedConfig (spec.md §6.2): the single,
// opaque-to-the-core configuration object loaded from a graphmap.yaml file,
// then overridden field-by-field by CLI flags. It is the one place the CLI
// driver and the assembler agree on field names and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/graphmap/internal/errors"
	"github.com/kraklabs/graphmap/pkg/entrypoint"
)

// FileName is the conventional config file name discovered in a project's
// root, analogous to the teacher's .cie/project.yaml.
const FileName = "graphmap.yaml"

// EntryPointRule is the on-disk shape of one §4.4 entry-point rule.
type EntryPointRule struct {
	Tag     string `yaml:"tag"`
	Pattern string `yaml:"pattern"`
}

// TypeScriptConfig holds the typescript.* block of graphmap.yaml.
type TypeScriptConfig struct {
	TSConfig string `yaml:"tsconfig,omitempty" json:"tsconfig,omitempty"`
}

// GoConfig holds the go.* block of graphmap.yaml.
type GoConfig struct {
	Module    string   `yaml:"module,omitempty" json:"module,omitempty"`
	BuildTags []string `yaml:"buildTags,omitempty" json:"buildTags,omitempty"`
}

// PythonConfig holds the python.* block of graphmap.yaml.
type PythonConfig struct {
	PythonVersion string   `yaml:"pythonVersion,omitempty" json:"pythonVersion,omitempty"`
	VenvPath      string   `yaml:"venvPath,omitempty" json:"venvPath,omitempty"`
	SourceRoots   []string `yaml:"sourceRoots,omitempty" json:"sourceRoots,omitempty"`
}

// ResolvedConfig is the full §6.2 field set. It is serialized back
// verbatim into metadata.config (§6.1), so every field's json tag matches
// its yaml tag.
type ResolvedConfig struct {
	Language    string           `yaml:"language" json:"language"`
	Include     []string         `yaml:"include" json:"include"`
	Exclude     []string         `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	EntryPoints []EntryPointRule `yaml:"entryPoints,omitempty" json:"entryPoints,omitempty"`
	Output      string           `yaml:"output,omitempty" json:"output,omitempty"`
	ProjectRoot string           `yaml:"projectRoot,omitempty" json:"projectRoot,omitempty"`

	TypeScript TypeScriptConfig `yaml:"typescript,omitempty" json:"typescript,omitempty"`
	Go         GoConfig         `yaml:"go,omitempty" json:"go,omitempty"`
	Python     PythonConfig     `yaml:"python,omitempty" json:"python,omitempty"`
}

// Default returns the baseline configuration a fresh project starts from:
// every language's source files included, nothing excluded but the usual
// dependency/build directories, output to stdout.
func Default() *ResolvedConfig {
	return &ResolvedConfig{
		Language: "all",
		Include:  []string{"**/*.go", "**/*.ts", "**/*.tsx", "**/*.py"},
		Exclude: []string{
			"**/node_modules/**", "**/vendor/**", "**/.git/**",
			"**/__pycache__/**", "**/dist/**", "**/build/**",
		},
		Output: "-",
	}
}

// Load reads and parses a graphmap.yaml file. Unknown fields are accepted
// (yaml.v3 ignores them by default), mirroring the artifact codec's
// forward-compatibility rule.
func Load(path string) (*ResolvedConfig, error) {
	body, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied, not request-derived
	if err != nil {
		return nil, errors.NewConfigInvalid(
			fmt.Sprintf("cannot read %s", path), err.Error(),
			"pass --config pointing at a readable graphmap.yaml", err,
		)
	}

	cfg := Default()
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return nil, errors.NewConfigInvalid(
			fmt.Sprintf("cannot parse %s", path), err.Error(),
			"check the file's YAML syntax against the documented field set", err,
		)
	}
	return cfg, nil
}

// Discover looks for FileName in dir and returns Default() (not an error)
// if it isn't there: an explicit config file is optional, per the CLI's
// flag-driven override model.
func Discover(dir string) (*ResolvedConfig, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that the required fields (projectRoot, include) are
// set. It does not rewrite or normalize any path: ProjectRoot must already
// be resolved to an absolute path by the caller (see
// internal/bootstrap.ProjectRoot).
func (c *ResolvedConfig) Validate() error {
	if c.ProjectRoot == "" {
		return errors.NewConfigInvalid(
			"projectRoot is required",
			"no --project-root flag and no projectRoot in graphmap.yaml",
			"pass --project-root or add projectRoot to graphmap.yaml",
			nil,
		)
	}
	if len(c.Include) == 0 {
		return errors.NewConfigInvalid(
			"include is required",
			"no --include flag and no include[] in graphmap.yaml",
			"pass at least one --include glob, e.g. --include '**/*.go'",
			nil,
		)
	}
	return nil
}

// EntrypointRules converts the on-disk rule list to the entrypoint
// package's Rule type.
func (c *ResolvedConfig) EntrypointRules() []entrypoint.Rule {
	out := make([]entrypoint.Rule, 0, len(c.EntryPoints))
	for _, r := range c.EntryPoints {
		out = append(out, entrypoint.Rule{Tag: entrypoint.RuleTag(r.Tag), Pattern: r.Pattern})
	}
	return out
}
