package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

const openURLDescription = "When the user asks to be taken to a specific webpage (or if it would help with your response, like a tutorial or something), " +
	"you can call this function which will open this page in the default browser."

var openURLSchema = wire.Schema{
	Properties: map[string]wire.Property{
		"url": {
			Type:        "string",
			Description: "The https url that should be opened by the browser.",
		},
	},
	Required: []string{"url"},
}

// Opener hands a validated URL to the platform's default browser. The
// desktop integration lives outside the core.
type Opener func(url string) error

// OpenURL probes an https URL and, when reachable, opens it through the
// injected opener. Failures come back as human-readable strings for the
// model to route around.
type OpenURL struct {
	client *http.Client
	open   Opener
}

// NewOpenURL builds the open-url-in-browser tool.
func NewOpenURL(open Opener) *OpenURL {
	return &OpenURL{
		client: &http.Client{Timeout: 30 * time.Second},
		open:   open,
	}
}

func (t *OpenURL) Name() string { return "open-url-in-browser" }

func (t *OpenURL) Description() string { return openURLDescription }

func (t *OpenURL) Schema() wire.Schema { return openURLSchema }

func (t *OpenURL) Strict() bool { return true }

func (t *OpenURL) Execute(ctx context.Context, args map[string]string) (string, error) {
	raw, ok := args["url"]
	if !ok {
		return "Invalid input", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "https" {
		return "Invalid input", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return "Invalid input", nil
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "Unable to connect to target website", nil
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Website does not return OK status code, instead returned %d", resp.StatusCode), nil
	}

	if t.open != nil {
		if err := t.open(raw); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Successfully opened: %s", raw), nil
}
