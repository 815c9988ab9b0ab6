package matcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/validation"
)

//go:embed analysis.schema.json
var analysisSchemaJSON string

var analysisSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(analysisSchemaJSON))
})

var validate = validator.New(validator.WithRequiredStructEnabled())

// AnalysisRequest is the pair of documents sent for scoring.
type AnalysisRequest struct {
	ResumeText string `json:"resume_text" validate:"required"`
	JobText    string `json:"job_description" validate:"required"`
}

// AnalysisResult is a validated scoring report.
type AnalysisResult struct {
	MatchScore    int      `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Suggestions   []string `json:"suggestions"`
	Insights      []string `json:"insights"`
}

type analysisResponse struct {
	MatchScore    float64  `json:"match_score" mapstructure:"match_score"`
	MatchedSkills []string `json:"matched_skills" mapstructure:"matched_skills"`
	MissingSkills []string `json:"missing_skills" mapstructure:"missing_skills"`
	Suggestions   []string `json:"suggestions" mapstructure:"suggestions"`
	Insights      []string `json:"insights" mapstructure:"insights"`
}

func (r *analysisResponse) result() *AnalysisResult {
	return &AnalysisResult{
		// the score is truncated, never rounded up past what the backend reported
		MatchScore:    int(math.Trunc(r.MatchScore)),
		MatchedSkills: nonNil(r.MatchedSkills),
		MissingSkills: nonNil(r.MissingSkills),
		Suggestions:   nonNil(r.Suggestions),
		Insights:      nonNil(r.Insights),
	}
}

// Analyze submits both documents to the scoring endpoint.
func (c *Client) Analyze(ctx context.Context, request AnalysisRequest) (*AnalysisResult, error) {
	request.ResumeText = strings.TrimSpace(request.ResumeText)
	request.JobText = strings.TrimSpace(request.JobText)

	if err := validate.Struct(request); err != nil {
		return nil, &validation.Error{
			Kind:    validation.EmptyField,
			Message: "Both resume and job description are required",
			Err:     err,
		}
	}

	resp, err := c.postJSON(ctx, c.endpoint(analyzePath), request)
	if err != nil {
		return nil, fmt.Errorf("submit analysis: %w", err)
	}

	r, err := readReply(resp, analyzePath, AnalysisFailed)
	if err != nil {
		return nil, err
	}

	if err := checkSchema(r.raw); err != nil {
		return nil, &ContractError{Kind: MalformedResponse, Endpoint: analyzePath, Status: r.status, Err: err}
	}

	var body analysisResponse
	if err := json.Unmarshal(r.raw, &body); err != nil {
		return nil, &ContractError{Kind: MalformedResponse, Endpoint: analyzePath, Status: r.status, Err: err}
	}

	result := body.result()

	c.logger.Debug("analysis received",
		zap.Int("match_score", result.MatchScore),
		zap.Int("matched_skills", len(result.MatchedSkills)),
		zap.Int("missing_skills", len(result.MissingSkills)),
	)

	return result, nil
}

func checkSchema(raw []byte) error {
	schema, err := analysisSchema()
	if err != nil {
		return fmt.Errorf("load analysis schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
	}

	return errors.New(strings.Join(problems, "; "))
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
