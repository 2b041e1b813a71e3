package ecount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
)

// ErrLogin is returned when no login endpoint and body combination yields a
// session.
var ErrLogin = errors.New("ecount login failed")

var pathBases = []string{"/OAPI/V2", "/ECERP/OAPI/V2"}

var basePrefix = regexp.MustCompile(`^/(?:OAPI/V2|ECERP/OAPI/V2)`)

// Options configures a Client. Zero values fall back to the defaults used by
// NewClient.
type Options struct {
	ZoneHost   string
	ComCode    string
	UserID     string
	APICertKey string
	LanType    string
	ForceZone  string
	Password   string
	Timeout    time.Duration

	// ZoneAPIHost maps a zone code to its API host.
	ZoneAPIHost func(zone string) string

	HTTPClient *http.Client
	Sessions   *SessionCache
	Cache      *FileCache
	Retry      Retrier
	Logger     *slog.Logger
}

// OptionsFromConfig builds client options from the ecount config section.
func OptionsFromConfig(cfg common.ECountConfig, logger *slog.Logger) Options {
	return Options{
		ZoneHost:   cfg.ZoneHost,
		ComCode:    cfg.ComCode,
		UserID:     cfg.UserID,
		APICertKey: cfg.APICertKey,
		LanType:    cfg.LanType,
		ForceZone:  cfg.ForceZone,
		Password:   cfg.UserPassword,
		Timeout:    cfg.Timeout,
		Sessions:   NewSessionCache(cfg.SessionTTL, nil),
		Cache:      NewFileCache(cfg.CacheDir, cfg.CacheTTL, nil),
		Retry:      Retrier{Attempts: cfg.Retries, Base: cfg.BaseDelay, Jitter: randomJitter},
		Logger:     logger,
	}
}

// Client talks to the ECOUNT OpenAPI.
type Client struct {
	opts   Options
	http   *http.Client
	logger *slog.Logger
}

func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ZoneHost == "" {
		opts.ZoneHost = "https://sboapi.ecount.com"
	}
	opts.ZoneHost = strings.TrimRight(opts.ZoneHost, "/")
	if opts.ZoneAPIHost == nil {
		opts.ZoneAPIHost = func(zone string) string { return "https://sboapi" + zone + ".ecount.com" }
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionCache(19*time.Minute, nil)
	}
	if opts.LanType == "" {
		opts.LanType = "ko-KR"
	}
	c := &Client{opts: opts, http: opts.HTTPClient, logger: opts.Logger}
	if c.opts.Retry.OnRetry == nil {
		c.opts.Retry.OnRetry = func(attempt int, wait time.Duration, err error) {
			c.logger.Warn("ecount.call.retry", "attempt", attempt+1, "wait_ms", wait.Milliseconds(), "error", err)
		}
	}
	return c
}

type envelope struct {
	Status    json.RawMessage `json:"Status"`
	ErrCode   json.RawMessage `json:"ERR_CODE"`
	SessionID string          `json:"SESSION_ID"`
	Data      json.RawMessage `json:"Data"`
}

type loginData struct {
	SessionID string `json:"SESSION_ID"`
	HostURL   string `json:"HOST_URL"`
	Datas     struct {
		SessionID string `json:"SESSION_ID"`
	} `json:"Datas"`
}

// rawText renders a JSON scalar that may be a string or a number.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) post(ctx context.Context, target string, body any) ([]byte, error) {
	ctx, cancel := common.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	raw, _, err := postJSON(ctx, c.http, target, body, c.logger)
	return raw, err
}

// Zone resolves the company's zone code, honouring a forced zone.
func (c *Client) Zone(ctx context.Context) (string, error) {
	if c.opts.ForceZone != "" {
		return c.opts.ForceZone, nil
	}
	body := map[string]string{
		"COM_CODE":     c.opts.ComCode,
		"API_CERT_KEY": c.opts.APICertKey,
		"LAN_TYPE":     c.opts.LanType,
	}
	raw, err := c.post(ctx, c.opts.ZoneHost+"/OAPI/V2/Zone", body)
	if err != nil {
		return "", fmt.Errorf("zone lookup: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("zone lookup: decode: %w", err)
	}
	var data struct {
		Zone string `json:"ZONE"`
	}
	if rawText(env.Status) != "200" || json.Unmarshal(env.Data, &data) != nil || data.Zone == "" {
		return "", fmt.Errorf("zone lookup: unexpected response %s", truncate(string(raw), 200))
	}
	return data.Zone, nil
}

func (c *Client) loginBodies(zone string) []map[string]string {
	base := map[string]string{
		"COM_CODE":     c.opts.ComCode,
		"USER_ID":      c.opts.UserID,
		"API_CERT_KEY": c.opts.APICertKey,
		"LAN_TYPE":     c.opts.LanType,
		"ZONE":         zone,
	}
	if c.opts.Password == "" {
		return []map[string]string{base}
	}
	with := func(key string) map[string]string {
		m := make(map[string]string, len(base)+1)
		for k, v := range base {
			m[k] = v
		}
		m[key] = c.opts.Password
		return m
	}
	return []map[string]string{with("PWD"), with("PASSWORD"), with("USER_PW"), base}
}

// Login tries OAPILogin and then Login, each with every body variant, and
// returns the first session obtained.
func (c *Client) Login(ctx context.Context, zone string) (Session, error) {
	apiHost := c.opts.ZoneAPIHost(zone)
	for _, endpoint := range []string{"/OAPI/V2/OAPILogin", "/OAPI/V2/Login"} {
		for i, body := range c.loginBodies(zone) {
			raw, err := c.post(ctx, apiHost+endpoint, body)
			if err != nil {
				c.logger.Debug("ecount.login.attempt_failed", "endpoint", endpoint, "variant", i, "error", err)
				continue
			}
			if s, ok := parseLogin(raw, zone, apiHost); ok {
				c.logger.Info("ecount.login.ok", "zone", zone, "endpoint", endpoint, "variant", i)
				return s, nil
			}
		}
	}
	return Session{}, fmt.Errorf("%w: all endpoint/body combinations rejected", ErrLogin)
}

func parseLogin(raw []byte, zone, apiHost string) (Session, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Session{}, false
	}
	if rawText(env.ErrCode) == "0" && env.SessionID != "" {
		return Session{Zone: zone, ID: env.SessionID, Host: apiHost}, true
	}
	if rawText(env.Status) != "200" {
		return Session{}, false
	}
	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Session{}, false
	}
	id := data.SessionID
	if id == "" {
		id = data.Datas.SessionID
	}
	if id == "" {
		return Session{}, false
	}
	host := apiHost
	if data.HostURL != "" {
		host = "https://" + data.HostURL
	}
	return Session{Zone: zone, ID: id, Host: host}, true
}

// EnsureSession returns the cached session or logs in again.
func (c *Client) EnsureSession(ctx context.Context) (Session, error) {
	if s, ok := c.opts.Sessions.Get(); ok {
		return s, nil
	}
	zone, err := c.Zone(ctx)
	if err != nil {
		return Session{}, err
	}
	s, err := c.Login(ctx, zone)
	if err != nil {
		return Session{}, err
	}
	return c.opts.Sessions.Put(s), nil
}

// Post calls apiPath with the session, trying every host and path base
// combination until one answers with a 2xx JSON body.
func (c *Client) Post(ctx context.Context, s Session, apiPath string, body any) (json.RawMessage, error) {
	hosts := uniq(s.Host, c.opts.ZoneAPIHost(s.Zone), c.opts.ZoneHost)
	sub := basePrefix.ReplaceAllString(apiPath, "")
	if !strings.HasPrefix(sub, "/") {
		sub = "/" + sub
	}
	var last error
	for _, host := range hosts {
		for _, base := range pathBases {
			target := host + base + sub + "?SESSION_ID=" + url.QueryEscape(s.ID)
			raw, err := c.post(ctx, target, body)
			if err != nil {
				last = err
				continue
			}
			if !json.Valid(raw) {
				last = fmt.Errorf("invalid json from %s%s", host, base)
				continue
			}
			return raw, nil
		}
	}
	if last == nil {
		last = errors.New("no host candidates")
	}
	return nil, last
}

// Call performs a cached, retried API call.
func (c *Client) Call(ctx context.Context, apiPath string, body any) (json.RawMessage, error) {
	key := CacheKey(apiPath, body)
	if data, ok := c.opts.Cache.Get(key); ok {
		c.logger.Debug("ecount.cache.hit", "path", apiPath)
		return data, nil
	}

	var out json.RawMessage
	err := c.opts.Retry.Do(ctx, func(ctx context.Context) error {
		s, err := c.EnsureSession(ctx)
		if err != nil {
			return err
		}
		out, err = c.Post(ctx, s, apiPath, body)
		return err
	})
	if err != nil {
		c.logger.Error("ecount.call.failed", "path", apiPath, "error", err)
		return nil, common.NewAppError("ECOUNT_ERROR", "call "+apiPath+" failed", errors.Join(common.ErrUpstream, err))
	}
	if err := c.opts.Cache.Put(key, out); err != nil {
		c.logger.Warn("ecount.cache.write_error", "path", apiPath, "error", err)
	}
	return out, nil
}

func uniq(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimRight(v, "/")
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
