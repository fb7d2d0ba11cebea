package archive

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

	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/service"
)

// Client talks to a running archive server over its REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the server listening on the given port.
func NewClient(port string) *Client {
	return &Client{
		baseURL: "http://localhost:" + port,
		http:    http.DefaultClient,
	}
}

// WithToken returns a copy of the client authenticating with the bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

type CreateDocumentRequest struct {
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Contents string   `json:"contents"`
	Tags     []string `json:"tags,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

type UpdateDocumentRequest struct {
	Title    *string  `json:"title,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Contents *string  `json:"contents,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type NewVersionRequest struct {
	Title    string   `json:"title"`
	Contents string   `json:"contents"`
	Tags     []string `json:"tags,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

type documentsResponse struct {
	Documents []*model.Document `json:"documents"`
	Total     int               `json:"total"`
}

type versionsResponse struct {
	Versions []model.Version `json:"versions"`
	Total    int             `json:"total"`
}

type worklistResponse struct {
	Worklist []service.WorklistItem `json:"worklist"`
	Total    int                    `json:"total"`
	Notice   string                 `json:"notice,omitempty"`
}

// Listings is the full read surface of the listing facade.
type Listings struct {
	Documents     []*model.Document `json:"documents"`
	Owned         []*model.Document `json:"owned"`
	Approved      []*model.Document `json:"approved"`
	ApprovedOwned []*model.Document `json:"approved_owned"`
	Notice        string            `json:"notice,omitempty"`
}

func (c *Client) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/v1/documents", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadDocument creates a document with an attached file in a single
// multipart request.
func (c *Client) UploadDocument(ctx context.Context, req CreateDocumentRequest, file io.Reader, fileName string) (*model.Document, error) {
	fields := map[string]string{
		"title":    req.Title,
		"type":     req.Type,
		"contents": req.Contents,
		"notes":    req.Notes,
		"tags":     strings.Join(req.Tags, ","),
	}

	var doc model.Document
	if err := c.doMultipart(ctx, "/v1/documents", fields, file, fileName, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/documents/%d", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) ListDocuments(ctx context.Context, ownerID, status, query string) ([]*model.Document, error) {
	values := url.Values{}
	if ownerID != "" {
		values.Set("owner_id", ownerID)
	}
	if status != "" {
		values.Set("status", status)
	}
	if query != "" {
		values.Set("q", query)
	}

	path := "/v1/documents"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var res documentsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Documents, nil
}

func (c *Client) UpdateDocument(ctx context.Context, id uint, req UpdateDocumentRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/documents/%d", id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/documents/%d", id), nil, nil)
}

// EraseDocument permanently removes the document and its stored files.
func (c *Client) EraseDocument(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/documents/%d?erase=true", id), nil, nil)
}

func (c *Client) GetVersions(ctx context.Context, id uint) ([]model.Version, error) {
	var res versionsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/documents/%d/versions", id), nil, &res); err != nil {
		return nil, err
	}
	return res.Versions, nil
}

func (c *Client) CreateNewVersion(ctx context.Context, id uint, req NewVersionRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/documents/%d/versions", id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadNewVersion submits a new version with an attached file.
func (c *Client) UploadNewVersion(ctx context.Context, id uint, req NewVersionRequest, file io.Reader, fileName string) (*model.Document, error) {
	fields := map[string]string{
		"title":    req.Title,
		"contents": req.Contents,
		"notes":    req.Notes,
		"tags":     strings.Join(req.Tags, ","),
	}

	var doc model.Document
	if err := c.doMultipart(ctx, fmt.Sprintf("/v1/documents/%d/versions", id), fields, file, fileName, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) ApproveDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/documents/%d/approve", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) RejectDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/documents/%d/reject", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ApproveVersion approves one version and returns the refreshed worklist.
func (c *Client) ApproveVersion(ctx context.Context, id uint, version int64, filter string) ([]service.WorklistItem, error) {
	return c.moderateVersion(ctx, id, version, "approve", filter)
}

// RejectVersion rejects one version and returns the refreshed worklist.
func (c *Client) RejectVersion(ctx context.Context, id uint, version int64, filter string) ([]service.WorklistItem, error) {
	return c.moderateVersion(ctx, id, version, "reject", filter)
}

func (c *Client) moderateVersion(ctx context.Context, id uint, version int64, action, filter string) ([]service.WorklistItem, error) {
	path := fmt.Sprintf("/v1/documents/%d/versions/%d/%s", id, version, action)
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}

	var res worklistResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Worklist, nil
}

func (c *Client) Worklist(ctx context.Context, status string) ([]service.WorklistItem, string, error) {
	path := "/v1/moderation/worklist"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var res worklistResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, "", err
	}
	return res.Worklist, res.Notice, nil
}

func (c *Client) Listings(ctx context.Context) (*Listings, error) {
	var res Listings
	if err := c.do(ctx, http.MethodGet, "/v1/listings", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, file io.Reader, fileName string, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}

	if file != nil {
		part, err := form.CreateFormFile("file", fileName)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file); err != nil {
			return err
		}
	}

	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil || envelope.Error.Code == "" {
			return fmt.Errorf("request failed with status %d", res.StatusCode)
		}
		return fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}
