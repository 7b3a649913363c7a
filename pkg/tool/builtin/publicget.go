package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

const publicGetDescription = "A general, unauthenticated GET-request for an API. The details you give will be execute exactly as given " +
	"with no authentication injected into the request. You will be returned the exact data returned by the request, encoded as UTF-8. " +
	"Importantly, so that you don't lose context, if you have the ability to filter results or only include necessary fields, you should do so."

var publicGetSchema = wire.Schema{
	Properties: map[string]wire.Property{
		"url": {
			Type:        "string",
			Description: "The complete URL that will be placed in the get request. Should include all necessary query parameters in-line",
		},
	},
	Required: []string{"url"},
}

// maxPublicGetBody caps how much response data is handed to the model.
const maxPublicGetBody = 1 << 20

// PublicGet performs an unauthenticated GET request on behalf of the model.
type PublicGet struct {
	client *http.Client
}

// NewPublicGet builds the get-request-public tool.
func NewPublicGet() *PublicGet {
	return &PublicGet{client: &http.Client{Timeout: 30 * time.Second}}
}

func (t *PublicGet) Name() string { return "get-request-public" }

func (t *PublicGet) Description() string { return publicGetDescription }

func (t *PublicGet) Schema() wire.Schema { return publicGetSchema }

func (t *PublicGet) Strict() bool { return true }

func (t *PublicGet) Execute(ctx context.Context, args map[string]string) (string, error) {
	raw, ok := args["url"]
	if !ok {
		return "You didn't provide a URL.", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "The URL you provided was invalid.", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return "The URL you provided was invalid.", nil
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "Unable to execute GET request.", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Server returned error code %d", resp.StatusCode), nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPublicGetBody))
	if err != nil {
		return "Unable to execute GET request.", nil
	}
	if !utf8.Valid(data) {
		return "Unable to parse data", nil
	}
	return string(data), nil
}
