package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Required environment variables.
const (
	EnvWeaviateURL    = "WEAVIATE_URL"
	EnvWeaviateAPIKey = "WEAVIATE_API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
)

// RequiredVars lists the variables the server refuses to start without.
var RequiredVars = []string{EnvWeaviateURL, EnvWeaviateAPIKey, EnvOpenAIAPIKey}

// ErrMissingEnv signals an unset or empty required environment variable.
var ErrMissingEnv = errors.New("required environment variable not set")

// MissingEnvError names the missing variable.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string { return e.Name + " not set" }

func (e *MissingEnvError) Unwrap() error { return ErrMissingEnv }

// LoadDotEnv loads variables from .env files into the process environment.
// Existing variables win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// RequireEnv returns the values of names. The first unset or empty variable
// yields a *MissingEnvError.
func RequireEnv(names ...string) (map[string]string, error) {
	vars := make(map[string]string, len(names))
	for _, name := range names {
		val := os.Getenv(name)
		if val == "" {
			return nil, &MissingEnvError{Name: name}
		}
		vars[name] = val
	}
	return vars, nil
}
