package username

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	prefix     = "anonymous-"
	suffixSize = 5
)

var animals = []string{"eagle", "dog", "rabbit", "hamster", "hawk"}

type state struct {
	Username string `yaml:"username"`
}

// Generate returns a fresh anonymous display name such as anonymous-hawk3f9a1.
func Generate() string {
	animal := animals[rand.Intn(len(animals))]
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixSize]
	return prefix + animal + suffix
}

// LoadOrCreate returns the name stored at path, generating and storing a new
// one on first use. A corrupt or empty file is replaced.
func LoadOrCreate(path string) (string, error) {
	name, err := load(path)
	switch {
	case err == nil && name != "":
		return name, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		log.Warn().Err(err).Str("path", path).Msg("replacing unreadable username file")
	}

	name = Generate()
	if err := save(path, name); err != nil {
		return "", err
	}
	log.Debug().Str("username", name).Str("path", path).Msg("created username")
	return name, nil
}

func load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var s state
	if err := yaml.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parse username file: %w", err)
	}
	return strings.TrimSpace(s.Username), nil
}

func save(path, name string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create username dir: %w", err)
	}
	data, err := yaml.Marshal(state{Username: name})
	if err != nil {
		return fmt.Errorf("marshal username: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write username file: %w", err)
	}
	return nil
}
