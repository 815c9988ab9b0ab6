package matcher

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultURL = "http://localhost:5000"
	userAgent  = "spigell/resume-matcher"

	extractPath = "/extract-pdf"
	analyzePath = "/analyze"
	historyPath = "/analyses"
)

// Client talks to the extraction and scoring backend.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

// New returns a client for the backend at baseURL. A zero timeout keeps the
// transport default. The token is optional.
func New(logger *zap.Logger, baseURL, token string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultURL
	}

	return &Client{
		token:  strings.TrimSpace(token),
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
		BaseURL:   baseURL,
	}
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}
