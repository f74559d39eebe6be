package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quill/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "QUILL_HTTP_TIMEOUT"
	apiTokenEnvKey     = "QUILL_API_TOKEN"
	adminTokenEnvKey   = "QUILL_ADMIN_TOKEN"
	sessionEnvKey      = "QUILL_SESSION"
	sessionCookieName  = "quill_session"
)

// Client is a simple HTTP client for the quill API.
type Client struct {
	baseURL      string
	http         *http.Client
	authToken    string
	adminToken   string
	sessionToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken:    strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken:   strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
		sessionToken: strings.TrimSpace(os.Getenv(sessionEnvKey)),
	}
}

// SetSessionToken authenticates later requests with a session from Login.
func (c *Client) SetSessionToken(token string) {
	c.sessionToken = strings.TrimSpace(token)
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

// Auth.

func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPost, "/v1/auth/register", nil, req, &resp)
	return resp, err
}

func (c *Client) Login(ctx context.Context, req AuthLoginRequest) (AuthLoginResponse, error) {
	var resp AuthLoginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", nil, req, &resp)
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (AuthMeResponse, error) {
	var resp AuthMeResponse
	err := c.do(ctx, http.MethodGet, "/v1/auth/me", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetProfile(ctx context.Context) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodGet, "/v1/me/profile", nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodPatch, "/v1/me/profile", nil, req, &resp)
	return resp, err
}

// Public blog.

func (c *Client) Home(ctx context.Context) (HomeResponse, error) {
	var resp HomeResponse
	err := c.do(ctx, http.MethodGet, "/v1/home", nil, nil, &resp)
	return resp, err
}

func (c *Client) ListArticles(ctx context.Context, query url.Values) (ArticleListResponse, error) {
	var resp ArticleListResponse
	err := c.do(ctx, http.MethodGet, "/v1/articles", query, nil, &resp)
	return resp, err
}

func (c *Client) GetArticle(ctx context.Context, slug string) (ArticleDetailResponse, error) {
	var resp ArticleDetailResponse
	err := c.do(ctx, http.MethodGet, "/v1/articles/"+url.PathEscape(slug), nil, nil, &resp)
	return resp, err
}

func (c *Client) LikeArticle(ctx context.Context, slug string) (LikeResponse, error) {
	var resp LikeResponse
	err := c.do(ctx, http.MethodPost, "/v1/articles/"+url.PathEscape(slug)+"/like", nil, nil, &resp)
	return resp, err
}

func (c *Client) AddComment(ctx context.Context, slug string, req CommentCreateRequest) (models.Comment, error) {
	var resp models.Comment
	err := c.do(ctx, http.MethodPost, "/v1/articles/"+url.PathEscape(slug)+"/comments", nil, req, &resp)
	return resp, err
}

func (c *Client) ListPublicTerms(ctx context.Context, kind models.TermKind) ([]models.Term, error) {
	var resp []models.Term
	err := c.do(ctx, http.MethodGet, "/v1/"+string(kind.Entity()), nil, nil, &resp)
	return resp, err
}

func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (ContactResponse, error) {
	var resp ContactResponse
	err := c.do(ctx, http.MethodPost, "/v1/contact", nil, req, &resp)
	return resp, err
}

// Editorial admin. out receives the decoded record or listing.

func (c *Client) AdminList(ctx context.Context, entity models.Entity, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, adminPath(entity), query, nil, out)
}

func (c *Client) AdminGet(ctx context.Context, entity models.Entity, id string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, adminPath(entity, id), query, nil, out)
}

func (c *Client) AdminCreate(ctx context.Context, entity models.Entity, req any, out any) error {
	return c.do(ctx, http.MethodPost, adminPath(entity), nil, req, out)
}

func (c *Client) AdminUpdate(ctx context.Context, entity models.Entity, id string, req any, out any) error {
	return c.do(ctx, http.MethodPatch, adminPath(entity, id), nil, req, out)
}

func (c *Client) SoftDelete(ctx context.Context, entity models.Entity, ids []string) (BulkActionResponse, error) {
	var resp BulkActionResponse
	if len(ids) == 1 {
		err := c.do(ctx, http.MethodDelete, adminPath(entity, ids[0]), nil, nil, &resp)
		return resp, err
	}
	err := c.do(ctx, http.MethodPost, adminPath(entity, "delete"), nil, IDsRequest{IDs: ids}, &resp)
	return resp, err
}

func (c *Client) Restore(ctx context.Context, entity models.Entity, ids []string) (BulkActionResponse, error) {
	var resp BulkActionResponse
	if len(ids) == 1 {
		err := c.do(ctx, http.MethodPost, adminPath(entity, ids[0], "restore"), nil, nil, &resp)
		return resp, err
	}
	err := c.do(ctx, http.MethodPost, adminPath(entity, "restore"), nil, IDsRequest{IDs: ids}, &resp)
	return resp, err
}

func (c *Client) Purge(ctx context.Context, entity models.Entity, id string) (PurgeResponse, error) {
	var resp PurgeResponse
	err := c.doAdmin(ctx, http.MethodDelete, adminPath(entity, id, "purge"), nil, nil, false, &resp)
	return resp, err
}

func (c *Client) PublishArticles(ctx context.Context, ids []string) (BulkActionResponse, error) {
	var resp BulkActionResponse
	err := c.do(ctx, http.MethodPost, "/v1/admin/articles/publish", nil, IDsRequest{IDs: ids}, &resp)
	return resp, err
}

func (c *Client) ApproveComments(ctx context.Context, ids []string) (BulkActionResponse, error) {
	var resp BulkActionResponse
	err := c.do(ctx, http.MethodPost, "/v1/admin/comments/approve", nil, IDsRequest{IDs: ids}, &resp)
	return resp, err
}

// Accounts admin.

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp []models.User
	err := c.doAdmin(ctx, http.MethodGet, "/v1/admin/users", nil, nil, false, &resp)
	return resp, err
}

func (c *Client) CreateUser(ctx context.Context, req AdminUserCreateRequest) (models.User, error) {
	var resp models.User
	err := c.doAdmin(ctx, http.MethodPost, "/v1/admin/users", nil, req, false, &resp)
	return resp, err
}

func (c *Client) UpdateUser(ctx context.Context, username string, req AdminUserUpdateRequest) (models.User, error) {
	var resp models.User
	err := c.doAdmin(ctx, http.MethodPatch, "/v1/admin/users/"+url.PathEscape(username), nil, req, false, &resp)
	return resp, err
}

func (c *Client) DeleteUser(ctx context.Context, username string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.doAdmin(ctx, http.MethodDelete, "/v1/admin/users/"+url.PathEscape(username), nil, nil, false, &resp)
	return resp, err
}

func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var resp []models.Company
	err := c.doAdmin(ctx, http.MethodGet, "/v1/admin/companies", nil, nil, false, &resp)
	return resp, err
}

func (c *Client) GetCompany(ctx context.Context, id string) (models.Company, error) {
	var resp models.Company
	err := c.doAdmin(ctx, http.MethodGet, "/v1/admin/companies/"+url.PathEscape(id), nil, nil, false, &resp)
	return resp, err
}

func (c *Client) CreateCompany(ctx context.Context, req CompanyRequest) (models.Company, error) {
	var resp models.Company
	err := c.doAdmin(ctx, http.MethodPost, "/v1/admin/companies", nil, req, false, &resp)
	return resp, err
}

func (c *Client) UpdateCompany(ctx context.Context, id string, req CompanyRequest) (models.Company, error) {
	var resp models.Company
	err := c.doAdmin(ctx, http.MethodPatch, "/v1/admin/companies/"+url.PathEscape(id), nil, req, false, &resp)
	return resp, err
}

func (c *Client) DeleteCompany(ctx context.Context, id string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.doAdmin(ctx, http.MethodDelete, "/v1/admin/companies/"+url.PathEscape(id), nil, nil, false, &resp)
	return resp, err
}

func (c *Client) ListContacts(ctx context.Context, query url.Values) ([]models.Contact, error) {
	var resp []models.Contact
	err := c.doAdmin(ctx, http.MethodGet, "/v1/admin/contacts", query, nil, false, &resp)
	return resp, err
}

// Media.

// UploadMedia sends one file as multipart form data.
func (c *Client) UploadMedia(ctx context.Context, kind models.MediaKind, filename string, r io.Reader) (MediaUploadResponse, error) {
	var resp MediaUploadResponse

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("kind", string(kind)); err != nil {
		return resp, err
	}
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return resp, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return resp, err
	}
	if err := writer.Close(); err != nil {
		return resp, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/media", &body)
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeader(req)
	err = c.send(req, &resp)
	return resp, err
}

func (c *Client) MediaGC(ctx context.Context, req MediaGCRequest) (MediaGCResponse, error) {
	var resp MediaGCResponse
	err := c.doAdmin(ctx, http.MethodPost, "/v1/admin/media/gc", nil, req, req.Apply, &resp)
	return resp, err
}

func adminPath(entity models.Entity, parts ...string) string {
	path := "/v1/admin/" + string(entity)
	for _, part := range parts {
		path += "/" + url.PathEscape(part)
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) doAdmin(ctx context.Context, method, path string, query url.Values, body any, confirm bool, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	c.setAdminHeader(req)
	if confirm {
		req.Header.Set("X-Confirm", "true")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		apiErr.Fields = errResp.Fields
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("api error: %s", resp.Status)
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if req == nil {
		return
	}
	if c.sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.sessionToken})
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

func (c *Client) setAdminHeader(req *http.Request) {
	if c.adminToken == "" || req == nil {
		return
	}
	req.Header.Set("X-Admin-Token", c.adminToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
