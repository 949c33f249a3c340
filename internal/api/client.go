// internal/api/client.go
//
// Client talks to the two remote collaborators: the assessment service
// (departments, generation, submission) and the meeting scheduler. Every
// call is a single JSON request/response with no retries; callers decide
// how failures surface.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	departmentsPath = "/get_departments"
	generatePath    = "/generate_assessment"
	submitPath      = "/add_promote_questions"

	// RequestIDHeader carries a per-call uuid for correlating remote logs.
	RequestIDHeader = "X-Request-ID"

	tokenTTL = 5 * time.Minute
)

// ErrMissingMeetingData is returned when the scheduler answers 2xx without meeting_data.
var ErrMissingMeetingData = errors.New("api: response missing meeting_data")

// StatusError reports a non-2xx response.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s: unexpected status %d", e.Op, e.Code)
}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is safe for concurrent use.
type Client struct {
	assessmentBase string
	schedulerURL   string
	compID         int
	http           HTTPClient
	signingKey     []byte
	requestID      func() string
	clock          func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithSigningKey enables HS256 bearer tokens on every request.
func WithSigningKey(key []byte) Option {
	return func(c *Client) {
		if len(key) > 0 {
			c.signingKey = key
		}
	}
}

// WithCompID sets the company claim placed in bearer tokens.
func WithCompID(id int) Option {
	return func(c *Client) {
		c.compID = id
	}
}

// WithClock lets tests pin token timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New builds a client for the given service endpoints.
func New(assessmentBase, schedulerURL string, opts ...Option) *Client {
	c := &Client{
		assessmentBase: strings.TrimRight(strings.TrimSpace(assessmentBase), "/"),
		schedulerURL:   strings.TrimSpace(schedulerURL),
		http:           http.DefaultClient,
		requestID:      uuid.NewString,
		clock:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Departments lists the departments the generator knows about.
func (c *Client) Departments(ctx context.Context) ([]string, error) {
	var resp DepartmentsResponse
	if err := c.do(ctx, "departments", http.MethodGet, c.assessmentBase+departmentsPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Departments == nil {
		return []string{}, nil
	}
	return resp.Departments, nil
}

// Generate requests AI-generated scenarios for one department and category.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.do(ctx, "generate", http.MethodPost, c.assessmentBase+generatePath, req, &resp); err != nil {
		return GenerateResponse{}, err
	}
	return resp, nil
}

// ScheduleMeeting books the group-discussion meeting.
func (c *Client) ScheduleMeeting(ctx context.Context, req MeetingRequest) (MeetingData, error) {
	var env meetingEnvelope
	if err := c.do(ctx, "schedule meeting", http.MethodPost, c.schedulerURL, req, &env); err != nil {
		return MeetingData{}, err
	}
	raw := bytes.TrimSpace(env.MeetingData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return MeetingData{}, ErrMissingMeetingData
	}
	var fields meetingFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return MeetingData{}, fmt.Errorf("api: schedule meeting: decode meeting_data: %w", err)
	}
	return MeetingData{
		ID:       string(fields.ID),
		JoinURL:  fields.JoinURL,
		Password: fields.Password,
		Raw:      append(json.RawMessage(nil), raw...),
	}, nil
}

// Submit posts the assembled assessment. A missing job_id is not an error
// here; the caller decides what an empty JobID means.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	if len(req.GroupDiscussions) == 0 {
		req.GroupDiscussions = EmptyGroupDiscussions
	}
	var env submitEnvelope
	if err := c.do(ctx, "submit", http.MethodPost, c.assessmentBase+submitPath, req, &env); err != nil {
		return SubmitResponse{}, err
	}
	return SubmitResponse{JobID: string(env.JobID)}, nil
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("api: %s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, c.requestID())
	if len(c.signingKey) > 0 {
		token, err := c.signToken()
		if err != nil {
			return fmt.Errorf("api: %s: sign token: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Op: op, Code: resp.StatusCode}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: %s: decode response: %w", op, err)
		}
	}
	return nil
}

// Claims identify the company on bearer tokens.
type Claims struct {
	CompID int `json:"comp_id"`
	jwt.RegisteredClaims
}

func (c *Client) signToken() (string, error) {
	now := c.clock()
	claims := Claims{
		CompID: c.compID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.signingKey)
}
