package vault

import (
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/sanLimbu/tasks-api/internal"
)

// Provider reads secrets from a Vault KV v2 mount. Secrets are addressed as
// "<secret path>:<key>" and cached for the lifetime of the provider.
type Provider struct {
	client  *api.Client
	path    string
	results map[string]map[string]interface{}
}

// New instantiates a Vault API client using the received token and address.
func New(token, addr, path string) (*Provider, error) {
	config := &api.Config{
		Address: addr,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		client:  client,
		path:    path,
		results: make(map[string]map[string]interface{}),
	}, nil
}

// Get reads the secret addressed as "<secret path>:<key>".
func (p *Provider) Get(v string) (string, error) {
	split := strings.Split(v, ":")
	if len(split) == 1 {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "missing key value")
	}

	pathSecret, key := split[0], split[1]

	res, ok := p.results[pathSecret]
	if !ok {
		secret, err := p.client.Logical().Read(p.path + pathSecret)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Logical.Read")
		}

		if secret == nil || secret.Data == nil {
			return "", internal.NewErrorf(internal.ErrorCodeNotFound, "secret not found")
		}

		data, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return "", internal.NewErrorf(internal.ErrorCodeUnknown, "invalid data in secret")
		}

		res = data

		p.results[pathSecret] = res
	}

	value, ok := res[key]
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "key not found in secret")
	}

	str, ok := value.(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeUnknown, "secret value is not a string")
	}

	return str, nil
}
