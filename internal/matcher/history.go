package matcher

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Record is a stored analysis as returned by the history endpoint.
type Record struct {
	ResumeText     string           `mapstructure:"resume_text"`
	JobDescription string           `mapstructure:"job_description"`
	CreatedAt      string           `mapstructure:"created_at"`
	Analysis       analysisResponse `mapstructure:"analysis"`
}

// Result returns the stored analysis in the same form Analyze produces.
func (r *Record) Result() *AnalysisResult {
	return r.Analysis.result()
}

// History returns the most recent analyses stored by the backend, newest first.
func (c *Client) History(ctx context.Context) ([]*Record, error) {
	resp, err := c.get(ctx, c.endpoint(historyPath))
	if err != nil {
		return nil, fmt.Errorf("get analyses: %w", err)
	}

	r, err := readReply(resp, historyPath, HistoryFailed)
	if err != nil {
		return nil, err
	}

	items, ok := r.parsed.([]any)
	if !ok {
		return nil, &ContractError{
			Kind:     MalformedResponse,
			Endpoint: historyPath,
			Status:   r.status,
			Err:      fmt.Errorf("expected a list, got %T", r.parsed),
		}
	}

	var records []*Record
	if err = mapstructure.Decode(items, &records); err != nil {
		return nil, &ContractError{Kind: MalformedResponse, Endpoint: historyPath, Status: r.status, Err: err}
	}

	return records, nil
}
