package matcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

// reply is a response that passed the content-kind and parse checks.
type reply struct {
	status int
	raw    []byte
	parsed any
}

// errorBody is the failure shape shared by all endpoints.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.request(req)
}

func (c *Client) postFile(ctx context.Context, url, field, name, partType string, data []byte) (*http.Response, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	header.Set("Content-Type", partType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.request(req)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return c.request(c.setHeaders(req))
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.Header.Get("Content-Type")),
	)

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

// readReply enforces the response contract shared by every endpoint, in order:
// the body must be declared as JSON, it must parse, and the status must be 2xx.
// A failure status is turned into an ApplicationError of the given kind carrying
// the server message when one is present.
func readReply(resp *http.Response, endpoint string, failure Kind) (*reply, error) {
	defer resp.Body.Close()

	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, &ContractError{
			Kind:     UnexpectedResponseFormat,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("content type %q", resp.Header.Get("Content-Type")),
		}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &ContractError{Kind: MalformedResponse, Endpoint: endpoint, Status: resp.StatusCode, Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &ContractError{Kind: MalformedResponse, Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &ContractError{Kind: MalformedResponse, Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var body errorBody
		// the shape of a failure body is advisory; fall back to the generic message
		_ = json.Unmarshal(data, &body)
		return nil, &ApplicationError{
			Kind:     failure,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(body.Error),
		}
	}

	return &reply{status: resp.StatusCode, raw: data, parsed: parsed}, nil
}

func isJSON(header string) bool {
	if header == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}

	return mediaType == contentType || strings.HasSuffix(mediaType, "+json")
}
