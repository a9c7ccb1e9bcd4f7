package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bilifollow/pkg/config"
	"bilifollow/pkg/errors"
	"bilifollow/pkg/logger"
)

// Client is an authenticated Bilibili API client. It performs one
// request at a time; pacing between calls is the caller's concern.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	csrf       string
	logger     logger.Logger
}

// NewClient creates a client authenticated with the given credential
// section. The sessdata/bili_jct pair is sent as cookies; bili_jct is
// also the anti-forgery token for mutating calls.
func NewClient(cred *config.CredentialConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	cookies := []string{fmt.Sprintf("SESSDATA=%s", cred.Sessdata)}
	cookies = append(cookies, fmt.Sprintf("bili_jct=%s", cred.BiliJct))
	if cred.Buvid3 != "" {
		cookies = append(cookies, fmt.Sprintf("buvid3=%s", cred.Buvid3))
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Referer":    "https://www.bilibili.com",
			"Origin":     "https://www.bilibili.com",
			"Cookie":     strings.Join(cookies, "; "),
		},
		baseURL: BaseURL,
		csrf:    cred.BiliJct,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBaseURL overrides the API base URL, used by tests
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps HTTP-level failures to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 400:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return nil
	}
}

// decodeEnvelope reads a response body, unwraps the standard Bilibili
// envelope, and maps a non-zero API code to a typed error. The data
// payload is decoded into target when target is non-nil.
func (c *Client) decodeEnvelope(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse API response", map[string]interface{}{
			"url":          resp.Request.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse response: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if env.Code != errors.CodeOK {
		return errors.FromCode(env.Code, env.Message)
	}

	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse data payload: %v", err),
				Code:    resp.StatusCode,
			}
		}
	}

	return nil
}

// getJSON performs a GET request and decodes the envelope data payload
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}

	return c.decodeEnvelope(resp, target)
}

// postForm performs a POST request with form data and unwraps the envelope
func (c *Client) postForm(ctx context.Context, url string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}

	return c.decodeEnvelope(resp, nil)
}

// MyInfo fetches the authenticated account's own profile. Callers use
// it as a credential liveness check before doing any real work.
func (c *Client) MyInfo(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.getJSON(ctx, myInfoURL(c.baseURL), &info); err != nil {
		c.logger.WithError(err).Error("failed to fetch account info")
		return nil, err
	}

	c.logger.DebugWithFields("fetched account info", map[string]interface{}{
		"mid":  info.Mid,
		"name": info.Name,
	})

	return &info, nil
}

// Followings fetches one page of the followings list for vmid
func (c *Client) Followings(ctx context.Context, vmid int64, page int) (*FollowingsPage, error) {
	var result FollowingsPage
	if err := c.getJSON(ctx, followingsURL(c.baseURL, vmid, page), &result); err != nil {
		c.logger.ErrorWithFields("failed to fetch followings page", map[string]interface{}{
			"vmid":  vmid,
			"page":  page,
			"error": err.Error(),
		})
		return nil, err
	}

	c.logger.DebugWithFields("fetched followings page", map[string]interface{}{
		"vmid":  vmid,
		"page":  page,
		"count": len(result.List),
		"total": result.Total,
	})

	return &result, nil
}

// Relation fetches the relation attribute between the account and fid
func (c *Client) Relation(ctx context.Context, fid int64) (*RelationData, error) {
	var rel RelationData
	if err := c.getJSON(ctx, relationURL(c.baseURL, fid), &rel); err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("fetched relation", map[string]interface{}{
		"fid":       fid,
		"attribute": int(rel.Attribute),
	})

	return &rel, nil
}

// Follow subscribes the account to fid. The API's 22014
// "already following" code surfaces as a typed error so callers can
// treat it as success; -404 marks a permanently missing target.
func (c *Client) Follow(ctx context.Context, fid int64) error {
	form := url.Values{}
	form.Set("fid", fmt.Sprintf("%d", fid))
	form.Set("act", fmt.Sprintf("%d", ActFollow))
	form.Set("re_src", "11")
	form.Set("csrf", c.csrf)

	return c.postForm(ctx, modifyURL(c.baseURL), form)
}
