package envvar

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sanLimbu/tasks-api/internal"
)

// Provider provides access to secret values stored outside of the process environment.
type Provider interface {
	Get(key string) (string, error)
}

// Configuration serves configuration values from environment variables, indirecting
// through a secrets Provider when a "<KEY>_SECURE" variable is present.
type Configuration struct {
	provider Provider
}

// Load reads the given filename into the process environment, values already present in
// the environment win. A blank filename is a no-op.
func Load(filename string) error {
	if filename == "" {
		return nil
	}

	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "godotenv.Load")
	}

	return nil
}

// New ...
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value of the environment variable, or the secret it points to when
// the corresponding "<KEY>_SECURE" variable is defined.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	valSecret := os.Getenv(key + "_SECURE")
	if valSecret != "" {
		valSecretRes, err := c.provider.Get(valSecret)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "provider.Get")
		}

		res = valSecretRes
	}

	return res, nil
}
