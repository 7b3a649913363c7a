// Package credential supplies bearer tokens for named external services.
// Storage itself (keychain, OS secret service) lives outside the core; the
// orchestration layer only consumes the lookup capability.
package credential

import (
	"fmt"
	"os"
	"strings"
)

// Source resolves a bearer token for a service name such as "openai".
type Source interface {
	BearerToken(service string) (string, error)
}

// NotFoundError reports a service with no stored token.
type NotFoundError struct {
	Service string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("credential: no token for service %q", e.Service)
}

// EnvSource reads tokens from environment variables. The service name maps
// to <SERVICE>_API_KEY with dashes folded to underscores, so "openai"
// resolves OPENAI_API_KEY.
type EnvSource struct{}

func (EnvSource) BearerToken(service string) (string, error) {
	key := strings.ToUpper(strings.ReplaceAll(service, "-", "_")) + "_API_KEY"
	token := strings.TrimSpace(os.Getenv(key))
	if token == "" {
		return "", &NotFoundError{Service: service}
	}
	return token, nil
}

// StaticSource serves tokens from a fixed map. Used by tests and by callers
// that resolve credentials ahead of time.
type StaticSource map[string]string

func (s StaticSource) BearerToken(service string) (string, error) {
	token, ok := s[service]
	if !ok || token == "" {
		return "", &NotFoundError{Service: service}
	}
	return token, nil
}

// Chain tries each source in order and returns the first token found.
type Chain []Source

func (c Chain) BearerToken(service string) (string, error) {
	for _, src := range c {
		token, err := src.BearerToken(service)
		if err == nil {
			return token, nil
		}
	}
	return "", &NotFoundError{Service: service}
}
