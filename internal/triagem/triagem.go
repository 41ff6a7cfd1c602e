// Package triagem is a client for the remote résumé screening API.
package triagem

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAPIURL  = "http://localhost:8000"
	defaultTimeout = 60 * time.Second
	userAgent      = "odq/triagem-cli"

	healthPath = "/health"
	screenPath = "/triagem-email"

	// Bodies of failed responses are cut to this many runes in errors and logs.
	maxErrorBody = 200
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New returns a client for the API at apiURL. An empty token sends no
// Authorization header.
func New(logger *zap.Logger, apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}
