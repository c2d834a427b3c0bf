// Package rest implements the admin API collaborator over HTTP. All calls
// go through the session guard transport, which attaches the credential and
// handles 401 teardown.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/session"
)

// Client talks to the admin API. It satisfies the port.*API interfaces.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New constructs a Client. The http.Client is expected to carry a
// *session.Guard transport.
func New(baseURL string, hc *http.Client, logger *zap.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger,
	}
}

// GlobalConf implements port.CapabilityAPI.
func (c *Client) GlobalConf(ctx context.Context) (port.Capabilities, error) {
	var dto globalConfDTO
	if err := c.do(ctx, http.MethodGet, "/global_conf", nil, nil, &dto); err != nil {
		return port.Capabilities{}, err
	}

	caps := port.Capabilities{
		Platforms: make(map[string]domain.Platform, len(dto.PlatformConf)),
		Sites:     make(map[string]domain.Site, len(dto.SiteConf)),
	}
	for name, p := range dto.PlatformConf {
		caps.Platforms[name] = p.toDomain()
	}
	for name, s := range dto.SiteConf {
		caps.Sites[name] = domain.Site{Name: s.Name, CookieEnabled: s.EnableCookie}
	}
	return caps, nil
}

// Auth implements port.AuthAPI.
func (c *Client) Auth(ctx context.Context, code string) (port.AuthGrant, error) {
	q := url.Values{"token": {code}}
	var dto tokenRespDTO
	if err := c.do(ctx, http.MethodGet, "/auth", q, nil, &dto); err != nil {
		return port.AuthGrant{}, err
	}
	return port.AuthGrant{Token: dto.Token, Type: dto.Type, ID: dto.ID, Name: dto.Name}, nil
}

// Subs implements port.SubscribeAPI.
func (c *Client) Subs(ctx context.Context) ([]domain.Group, error) {
	var dto map[string]subscribeGroupDTO
	if err := c.do(ctx, http.MethodGet, "/subs", nil, nil, &dto); err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(dto))
	for number, g := range dto {
		subs := make([]domain.SubscribeConfig, 0, len(g.Subscribes))
		for _, s := range g.Subscribes {
			subs = append(subs, s.toDomain())
		}
		groups = append(groups, domain.Group{
			GroupNumber: number,
			DisplayName: g.Name,
			Subscribes:  subs,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupNumber < groups[j].GroupNumber })
	return groups, nil
}

// NewSub implements port.SubscribeAPI.
func (c *Client) NewSub(ctx context.Context, groupNumber string, sub domain.SubscribeConfig) error {
	q := url.Values{"groupNumber": {groupNumber}}
	return c.doStatus(ctx, http.MethodPost, "/subs", q, subscribeToDTO(sub))
}

// UpdateSub implements port.SubscribeAPI.
func (c *Client) UpdateSub(ctx context.Context, groupNumber string, sub domain.SubscribeConfig) error {
	q := url.Values{"groupNumber": {groupNumber}}
	return c.doStatus(ctx, http.MethodPatch, "/subs", q, subscribeToDTO(sub))
}

// DeleteSub implements port.SubscribeAPI.
func (c *Client) DeleteSub(ctx context.Context, groupNumber, platformName, target string) error {
	q := url.Values{
		"groupNumber":  {groupNumber},
		"platformName": {platformName},
		"target":       {target},
	}
	return c.doStatus(ctx, http.MethodDelete, "/subs", q, nil)
}

// TargetName implements port.TargetNameAPI. An empty name with nil error
// means the target does not exist on the platform.
func (c *Client) TargetName(ctx context.Context, platformName, target string) (string, error) {
	q := url.Values{"platformName": {platformName}, "target": {target}}
	var dto targetNameDTO
	if err := c.do(ctx, http.MethodGet, "/target_name", q, nil, &dto); err != nil {
		return "", err
	}
	if dto.TargetName == nil {
		return "", nil
	}
	return *dto.TargetName, nil
}

// Cookies implements port.CookieAPI.
func (c *Client) Cookies(ctx context.Context, filter port.CookieFilter) ([]domain.Cookie, error) {
	q := url.Values{}
	if filter.SiteName != "" {
		q.Set("site_name", filter.SiteName)
	}
	if filter.Target != "" {
		q.Set("target", filter.Target)
	}

	var dto []cookieDTO
	if err := c.do(ctx, http.MethodGet, "/cookie", q, nil, &dto); err != nil {
		return nil, err
	}
	cookies := make([]domain.Cookie, 0, len(dto))
	for _, d := range dto {
		cookies = append(cookies, d.toDomain())
	}
	return cookies, nil
}

// NewCookie implements port.CookieAPI.
func (c *Client) NewCookie(ctx context.Context, siteName, content string) error {
	q := url.Values{"site_name": {siteName}, "content": {content}}
	return c.doStatus(ctx, http.MethodPost, "/cookie", q, nil)
}

// DeleteCookie implements port.CookieAPI.
func (c *Client) DeleteCookie(ctx context.Context, cookieID int64) error {
	return c.doStatus(ctx, http.MethodDelete, "/cookie/"+strconv.FormatInt(cookieID, 10), nil, nil)
}

// ValidateCookie implements port.CookieAPI. A false result is a usable
// answer (the credential does not work), not an error.
func (c *Client) ValidateCookie(ctx context.Context, siteName, content string) (bool, error) {
	q := url.Values{"site_name": {siteName}, "content": {content}}
	var status statusResp
	if err := c.do(ctx, http.MethodPost, "/cookie/validate", q, nil, &status); err != nil {
		return false, err
	}
	return status.OK, nil
}

// CookieTargets implements port.CookieTargetAPI.
func (c *Client) CookieTargets(ctx context.Context, filter port.CookieFilter) ([]domain.CookieTarget, error) {
	q := url.Values{}
	if filter.SiteName != "" {
		q.Set("site_name", filter.SiteName)
	}
	if filter.Target != "" {
		q.Set("target", filter.Target)
	}
	if filter.CookieID != 0 {
		q.Set("cookie_id", strconv.FormatInt(filter.CookieID, 10))
	}

	var dto []cookieTargetDTO
	if err := c.do(ctx, http.MethodGet, "/cookie_target", q, nil, &dto); err != nil {
		return nil, err
	}
	targets := make([]domain.CookieTarget, 0, len(dto))
	for _, d := range dto {
		targets = append(targets, d.toDomain())
	}
	return targets, nil
}

// NewCookieTarget implements port.CookieTargetAPI.
func (c *Client) NewCookieTarget(ctx context.Context, platformName, target string, cookieID int64) error {
	q := cookieTargetQuery(platformName, target, cookieID)
	return c.doStatus(ctx, http.MethodPost, "/cookie_target", q, nil)
}

// DeleteCookieTarget implements port.CookieTargetAPI.
func (c *Client) DeleteCookieTarget(ctx context.Context, platformName, target string, cookieID int64) error {
	q := cookieTargetQuery(platformName, target, cookieID)
	return c.doStatus(ctx, http.MethodDelete, "/cookie_target", q, nil)
}

// Weights implements port.WeightAPI.
func (c *Client) Weights(ctx context.Context) ([]domain.TargetWeight, error) {
	var dto []targetWeightDTO
	if err := c.do(ctx, http.MethodGet, "/weight", nil, nil, &dto); err != nil {
		return nil, err
	}
	weights := make([]domain.TargetWeight, 0, len(dto))
	for _, d := range dto {
		weights = append(weights, domain.TargetWeight{
			PlatformName: d.PlatformName,
			Target:       d.Target,
			TargetName:   d.TargetName,
			Weight:       d.Weight.toDomain(),
		})
	}
	return weights, nil
}

// PutWeight implements port.WeightAPI.
func (c *Client) PutWeight(ctx context.Context, platformName, target string, weight domain.WeightConfig) error {
	q := url.Values{"platformName": {platformName}, "target": {target}}
	return c.doStatus(ctx, http.MethodPut, "/weight", q, weightToDTO(weight))
}

func cookieTargetQuery(platformName, target string, cookieID int64) url.Values {
	return url.Values{
		"platform_name": {platformName},
		"target":        {target},
		"cookie_id":     {strconv.FormatInt(cookieID, 10)},
	}
}

// doStatus performs a write whose response body is a {ok, msg} status.
func (c *Client) doStatus(ctx context.Context, method, path string, query url.Values, body any) error {
	var status statusResp
	if err := c.do(ctx, method, path, query, body, &status); err != nil {
		return err
	}
	if !status.OK {
		return &StatusError{Message: status.Msg}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("rest: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(method, path, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rest: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	msg := readErrorDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// The guard has already cleared the session before we get here.
		return fmt.Errorf("rest: %s %s: %w", method, path, session.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("rest: %s %s: %w", method, path, ErrForbidden)
	}

	c.logger.Debug("api error response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("detail", msg))
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
		return detail.Detail
	}
	return strings.TrimSpace(string(raw))
}
