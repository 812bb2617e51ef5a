package tokensdk

import (
	"net/http"
	"strings"
	"time"
)

// AdminKeyHeader carries the operator secret on management calls.
const AdminKeyHeader = "X-Admin-Key"

// SDKClient is a client for the token registry service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminKey authenticates account management and issuance calls.
	AdminKey string
}

// NewSDKClient creates a new client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
