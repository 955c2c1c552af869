package core

import (
	"net/http"

	"github.com/kndndrj/chhttp/core/transport"
	"github.com/kndndrj/chhttp/models"
)

type clientConfig struct {
	httpClient *http.Client
	policy     transport.Policy
	logger     models.Logger
	compress   bool
	level      int
}

type ClientOption func(*clientConfig)

// WithHTTPClient replaces the pooled default HTTP client, e.g. to set
// timeouts, TLS settings or a custom transport.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(cc *clientConfig) {
		cc.httpClient = client
	}
}

func WithRetryPolicy(policy transport.Policy) ClientOption {
	return func(cc *clientConfig) {
		cc.policy = policy
	}
}

func WithLogger(logger models.Logger) ClientOption {
	return func(cc *clientConfig) {
		if logger == nil {
			return
		}
		cc.logger = logger
	}
}

// WithCompressionLevel sets the gzip level used for statements.
func WithCompressionLevel(level int) ClientOption {
	return func(cc *clientConfig) {
		cc.compress = true
		cc.level = level
	}
}

// WithoutCompression sends statements as plain text.
func WithoutCompression() ClientOption {
	return func(cc *clientConfig) {
		cc.compress = false
	}
}
