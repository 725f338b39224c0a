// Package remote wraps the external analysis service's four pipeline
// endpoints. It carries no analysis logic of its own: requests go out in
// pipeline order and typed responses come back.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// SessionDelimiter separates the session identifier from the upload
// acknowledgment message ("...SESSION_ID:<id>").
const SessionDelimiter = "SESSION_ID:"

// TransportError is an HTTP-level failure: connection problems or a
// non-success status code.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is an application-level failure: a well-formed response
// carrying success:false and an error message.
type ServiceError struct {
	Op      string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: analysis service reported failure", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Client talks to one analysis service instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client targeting the configured analysis service.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload posts the batch as a multipart body and extracts the session
// identifier from the acknowledgment message.
func (c *Client) Upload(ctx context.Context, files []models.BatchFile) (string, error) {
	const op = "upload"

	if len(files) == 0 {
		return "", fmt.Errorf("%s: empty batch", op)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return "", fmt.Errorf("%s: building multipart body: %w", op, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return "", fmt.Errorf("%s: writing file %q: %w", op, f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: closing multipart body: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var ack struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.do(op, req, &ack); err != nil {
		return "", err
	}
	if !ack.Success {
		return "", &ServiceError{Op: op, Message: ack.Error}
	}

	sessionID, err := ExtractSessionID(ack.Message)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sessionID, nil
}

// Analyze runs domain classification for the session. A success:false flag
// is treated identically to a transport failure by callers; an empty profile
// list is a valid outcome.
func (c *Client) Analyze(ctx context.Context, sessionID string) ([]models.AnalysisProfile, error) {
	const op = "analyze"

	var resp struct {
		Success  bool                     `json:"success"`
		Error    string                   `json:"error"`
		Profiles []models.AnalysisProfile `json:"profiles"`
	}
	if err := c.postJSON(ctx, op, c.baseURL+"/analyze/"+url.PathEscape(sessionID), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServiceError{Op: op, Message: resp.Error}
	}
	return resp.Profiles, nil
}

// DetectColumns asks the service for date, login and identifier column
// candidates. Candidate-list emptiness is judged by the orchestrator, not
// here.
func (c *Client) DetectColumns(ctx context.Context, sessionID string) (*models.ColumnDetection, error) {
	const op = "detect-date-columns"

	var resp struct {
		Success         bool                     `json:"success"`
		Error           string                   `json:"error"`
		DateCandidates  []models.ColumnCandidate `json:"date_candidates"`
		LoginCandidates []models.ColumnCandidate `json:"login_candidates"`
		IDCandidates    []models.IDCandidate     `json:"id_candidates"`
	}
	if err := c.postJSON(ctx, op, c.baseURL+"/detect-date-columns/"+url.PathEscape(sessionID), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServiceError{Op: op, Message: resp.Error}
	}
	return &models.ColumnDetection{
		DateCandidates:  resp.DateCandidates,
		LoginCandidates: resp.LoginCandidates,
		IDCandidates:    resp.IDCandidates,
	}, nil
}

// AnalyzeAccounts runs the terminal account analysis with the chosen
// columns, passed as URL-encoded query parameters.
func (c *Client) AnalyzeAccounts(ctx context.Context, sessionID, dateColumn, idColumn string) (*models.AccountAnalysisResult, error) {
	const op = "analyze-accounts"

	q := url.Values{}
	q.Set("date_column", dateColumn)
	q.Set("id_column", idColumn)
	endpoint := c.baseURL + "/analyze-accounts/" + url.PathEscape(sessionID) + "?" + q.Encode()

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		models.AccountAnalysisResult
	}
	if err := c.postJSON(ctx, op, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServiceError{Op: op, Message: resp.Error}
	}
	result := resp.AccountAnalysisResult
	return &result, nil
}

// ExtractSessionID splits the acknowledgment message on the session
// delimiter and returns the trailing identifier.
func ExtractSessionID(message string) (string, error) {
	_, after, found := strings.Cut(message, SessionDelimiter)
	if !found {
		return "", fmt.Errorf("malformed acknowledgment: missing %q in %q", SessionDelimiter, message)
	}
	id := strings.TrimSpace(after)
	if id == "" {
		return "", fmt.Errorf("malformed acknowledgment: empty session id in %q", message)
	}
	return id, nil
}

// postJSON issues a bodyless POST and decodes the JSON response.
func (c *Client) postJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
