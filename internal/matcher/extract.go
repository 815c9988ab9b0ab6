package matcher

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/validation"
)

type extractResponse struct {
	Text string `json:"text"`
}

// ExtractPDF uploads a PDF and returns its text. A successful response with no
// usable text fails with NoExtractableText.
func (c *Client) ExtractPDF(ctx context.Context, name string, data []byte) (string, error) {
	resp, err := c.postFile(ctx, c.endpoint(extractPath), "file", name, validation.PDFMediaType, data)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	r, err := readReply(resp, extractPath, ExtractionFailed)
	if err != nil {
		return "", err
	}

	var body extractResponse
	if err := json.Unmarshal(r.raw, &body); err != nil {
		return "", &ContractError{Kind: MalformedResponse, Endpoint: extractPath, Status: r.status, Err: err}
	}

	if !validation.NonEmpty(body.Text) {
		return "", &ApplicationError{Kind: NoExtractableText, Endpoint: extractPath, Status: r.status}
	}

	c.logger.Debug("pdf extracted",
		zap.String("file", name),
		zap.Int("bytes", len(data)),
		zap.Int("text_length", len(body.Text)),
	)

	return body.Text, nil
}
