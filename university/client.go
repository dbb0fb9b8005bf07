// Package university implements the client for the persistence backend:
// course enrollment, profile, and course material endpoints. These are plain
// request/response calls with no streaming or concurrency concerns.
package university

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Course is one course in the catalogue.
type Course struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	Professor string `json:"professor"`
	Semester  string `json:"semester"`
	Enrolled  bool   `json:"enrolled"`
}

// Profile is the student's profile.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Degree string `json:"degree"`
	Year   int    `json:"year"`
}

// Material is one course material entry.
type Material struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Client talks to the persistence backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Courses lists the course catalogue with the student's enrollment flags.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.doJSON(ctx, http.MethodGet, "/api/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Enroll enrolls the student in a course.
func (c *Client) Enroll(ctx context.Context, courseID string) error {
	path := "/api/courses/" + url.PathEscape(courseID) + "/enroll"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// Unenroll removes the student from a course.
func (c *Client) Unenroll(ctx context.Context, courseID string) error {
	path := "/api/courses/" + url.PathEscape(courseID) + "/enroll"
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Profile fetches the student's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile", nil, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile replaces the student's profile and returns the stored copy.
func (c *Client) UpdateProfile(ctx context.Context, p Profile) (Profile, error) {
	var updated Profile
	if err := c.doJSON(ctx, http.MethodPut, "/api/profile", p, &updated); err != nil {
		return Profile{}, err
	}
	return updated, nil
}

// Materials lists the materials of one course.
func (c *Client) Materials(ctx context.Context, courseID string) ([]Material, error) {
	path := "/api/materials?course_id=" + url.QueryEscape(courseID)
	var materials []Material
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

// Download streams one material's content into w.
func (c *Client) Download(ctx context.Context, materialID string, w io.Writer) error {
	path := "/api/materials/" + url.PathEscape(materialID) + "/download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("university: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("university: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("university: download %s: %w", materialID, err)
	}
	return nil
}

// FilterMaterials returns the materials whose path matches the doublestar
// glob pattern. An empty pattern matches everything.
func FilterMaterials(materials []Material, pattern string) ([]Material, error) {
	if pattern == "" {
		return materials, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("university: invalid pattern %q", pattern)
	}
	var matched []Material
	for _, m := range materials {
		ok, err := doublestar.Match(pattern, m.Path)
		if err != nil {
			return nil, fmt.Errorf("university: match %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("university: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("university: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("university: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("university: decode response: %w", err)
	}
	return nil
}

func httpError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("university: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("university: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("university: HTTP %d: %s", resp.StatusCode, apiErr.Error)
}
