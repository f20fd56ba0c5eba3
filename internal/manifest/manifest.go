// Package manifest writes the build manifest shipped inside every artifact.
package manifest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Filename is the manifest's path relative to the artifact root.
const Filename = "artifact.yml"

// Manifest records where an artifact came from and how it was built.
type Manifest struct {
	// Identifier is the pushed branch or tag name.
	Identifier string `yaml:"identifier"`

	SourceBranch string    `yaml:"source_branch"`
	SourceCommit string    `yaml:"source_commit"`
	BuildTime    time.Time `yaml:"build_time"`

	// DependenciesInstalled is false when dependency building was
	// disabled by configuration.
	DependenciesInstalled bool `yaml:"dependencies_installed"`
}

// Write marshals m to path.
func Write(path string, m *Manifest) error {
	body, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("could not marshal manifest: %v", err)
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("could not write manifest: %v", err)
	}

	return nil
}

// Read unmarshals the manifest at path.
func Read(path string) (*Manifest, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read manifest: %v", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("could not unmarshal manifest: %v", err)
	}

	return &m, nil
}
