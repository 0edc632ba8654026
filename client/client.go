// Package client is a typed HTTP client for the messenger API, used by
// front-ends and integration tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"messenger-api/dto/req"
	"messenger-api/dto/res"
)

// APIError is returned for every non-2xx reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	clientKey  string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithClientSecret is only needed by the front-end server that performs the
// OAuth hand-off.
func WithClientSecret(secret string) Option {
	return func(c *Client) { c.clientKey = secret }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) Login(ctx context.Context, email string) (res.LoginResponse, error) {
	var out res.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req.LoginRequest{Email: email}, &out)
	return out, err
}

// Verify exchanges a code for a session and keeps the returned token.
func (c *Client) Verify(ctx context.Context, email, otp string) (res.AuthResponse, error) {
	var out res.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify", req.VerifyRequest{Email: email, Otp: otp}, &out); err != nil {
		return out, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) OAuthSession(ctx context.Context, email, avatar string) (res.AuthResponse, error) {
	var out res.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/oauth", req.OAuthRequest{Email: email, Avatar: avatar}, &out); err != nil {
		return out, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) Me(ctx context.Context) (res.UserResponse, error) {
	var out res.UserResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/user/me", nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, request req.EditProfileRequest) (res.UserResponse, error) {
	var out res.UserResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/user/profile", request, &out)
	return out, err
}

// SendOtp mails a code to email, or to the current address when email is
// empty.
func (c *Client) SendOtp(ctx context.Context, email string) (res.LoginResponse, error) {
	var out res.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/user/send-otp", req.SendOtpRequest{Email: email}, &out)
	return out, err
}

func (c *Client) UpdateEmail(ctx context.Context, email, otp string) (res.UserResponse, error) {
	var out res.UserResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/user/email", req.UpdateEmailRequest{Email: email, Otp: otp}, &out)
	return out, err
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/user/", nil, nil)
}

func (c *Client) Contacts(ctx context.Context) ([]res.ContactResponse, error) {
	var out []res.ContactResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/user/contacts", nil, &out)
	return out, err
}

func (c *Client) AddContact(ctx context.Context, request req.ContactRequest) (res.UserResponse, error) {
	var out res.UserResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/user/contact", request, &out)
	return out, err
}

// Messages returns the conversation with contactID, de-duplicated by id.
func (c *Client) Messages(ctx context.Context, contactID string) ([]res.MessageResponse, error) {
	var out []res.MessageResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/messages/"+url.PathEscape(contactID), nil, &out); err != nil {
		return nil, err
	}
	return DedupeMessages(out), nil
}

func (c *Client) SendMessage(ctx context.Context, request req.MessageRequest) (res.MessageResponse, error) {
	var out res.MessageResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/user/message", request, &out)
	return out, err
}

func (c *Client) MarkRead(ctx context.Context, contactID string) (res.MessageReadResponse, error) {
	var out res.MessageReadResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/user/message-read", req.MessageReadRequest{ContactID: contactID}, &out)
	return out, err
}

func (c *Client) React(ctx context.Context, messageID, reaction string) (res.MessageResponse, error) {
	var out res.MessageResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/user/reaction", req.ReactionRequest{MessageID: messageID, Reaction: reaction}, &out)
	return out, err
}

func (c *Client) EditMessage(ctx context.Context, messageID, text string) (res.MessageResponse, error) {
	var out res.MessageResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/user/message/"+url.PathEscape(messageID), req.EditMessageRequest{Text: text}, &out)
	return out, err
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/user/message/"+url.PathEscape(messageID), nil, nil)
}

func (c *Client) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (res.UploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return res.UploadResponse{}, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return res.UploadResponse{}, err
	}
	if err := writer.Close(); err != nil {
		return res.UploadResponse{}, err
	}

	var out res.UploadResponse
	err = c.do(ctx, http.MethodPost, "/api/user/upload", writer.FormDataContentType(), &buf, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, "application/json", reader, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", contentType)
	}
	request.Header.Set("Accept", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.clientKey != "" {
		request.Header.Set("X-Client-Secret", c.clientKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{StatusCode: response.StatusCode}
		var failure res.ErrorResponse
		if json.Unmarshal(raw, &failure) == nil && failure.Message != "" {
			apiErr.Message = failure.Message
		} else {
			apiErr.Message = http.StatusText(response.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
