// Package phab submits lint and unit results to Phabricator Harbormaster
// through the Conduit API.
package phab

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/richhaase/cargo-phabricator/internal/domain"
)

// SendMessageMethod is the Conduit method used to report results.
const SendMessageMethod = "harbormaster.sendmessage"

// DefaultMessageType attaches results without changing the build state.
const DefaultMessageType = "work"

// Client reports results for one Harbormaster build target.
// Its fields are fixed for the lifetime of the process.
type Client struct {
	// BaseURL is the Phabricator root, e.g. https://phabricator.example.com.
	BaseURL         string
	Token           string
	BuildTargetPHID string
	// MessageType is the sendmessage "type"; empty means DefaultMessageType.
	MessageType string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

type conduitParams struct {
	Token string `json:"token"`
}

type lintParams struct {
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Severity    domain.Severity `json:"severity"`
	Path        string          `json:"path"`
	Line        *int            `json:"line,omitempty"`
	Char        *int            `json:"char,omitempty"`
	Description string          `json:"description,omitempty"`
}

type unitParams struct {
	Name      string            `json:"name"`
	Result    domain.TestResult `json:"result"`
	Namespace string            `json:"namespace,omitempty"`
	Duration  *float64          `json:"duration,omitempty"`
	Details   string            `json:"details,omitempty"`
	Format    string            `json:"format,omitempty"`
}

type sendMessageParams struct {
	BuildTargetPHID string        `json:"buildTargetPHID"`
	Type            string        `json:"type"`
	Lint            []lintParams  `json:"lint"`
	Unit            []unitParams  `json:"unit"`
	Conduit         conduitParams `json:"__conduit__"`
}

type responseSchema struct {
	ErrorCode *string `json:"error_code"`
	ErrorInfo *string `json:"error_info"`
}

// Endpoint returns the sendmessage URL.
func (c *Client) Endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/api/" + SendMessageMethod
}

// EncodeParams renders the Conduit params JSON for batch.
func (c *Client) EncodeParams(batch domain.Batch) ([]byte, error) {
	msgType := c.MessageType
	if msgType == "" {
		msgType = DefaultMessageType
	}
	params := sendMessageParams{
		BuildTargetPHID: c.BuildTargetPHID,
		Type:            msgType,
		Lint:            make([]lintParams, 0, len(batch.Lints)),
		Unit:            make([]unitParams, 0, len(batch.Tests)),
		Conduit:         conduitParams{Token: c.Token},
	}
	for _, l := range batch.Lints {
		params.Lint = append(params.Lint, lintParams{
			Name:        l.Name,
			Code:        l.Code,
			Severity:    l.Severity,
			Path:        l.Path,
			Line:        l.Line,
			Char:        l.Column,
			Description: l.Description,
		})
	}
	for _, t := range batch.Tests {
		params.Unit = append(params.Unit, unitParams{
			Name:      t.Name,
			Result:    t.Result,
			Namespace: t.Namespace,
			Duration:  t.Duration,
			Details:   t.Details,
			Format:    t.Format,
		})
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, &Error{Kind: ErrEncode, Err: err}
	}
	return data, nil
}

// Publish submits batch in a single request. Partial submission is not
// possible: either the whole batch is accepted or an error is returned.
func (c *Client) Publish(ctx context.Context, batch domain.Batch) error {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	params, err := c.EncodeParams(batch)
	if err != nil {
		return err
	}
	form := url.Values{"params": {string(params)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Kind: ErrRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	logger.Debug("submitting results",
		zap.String("endpoint", c.Endpoint()),
		zap.String("build_target", c.BuildTargetPHID),
		zap.Int("lints", len(batch.Lints)),
		zap.Int("tests", len(batch.Tests)))

	resp, err := httpClient.Do(req)
	if err != nil {
		return &Error{Kind: ErrRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: ErrStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: ErrReadBody, Err: err}
	}

	var parsed responseSchema
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &Error{Kind: ErrDecodeResponse, Err: err}
	}
	if parsed.ErrorCode != nil {
		apiErr := &Error{Kind: ErrAPI, Code: *parsed.ErrorCode}
		if parsed.ErrorInfo != nil {
			apiErr.Err = errors.New(*parsed.ErrorInfo)
		}
		return apiErr
	}

	logger.Debug("results accepted", zap.Int("status", resp.StatusCode))
	return nil
}
