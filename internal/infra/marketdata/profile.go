package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"tickermate/internal/resilience/retry"
)

// Yahoo quoteSummary endpoints used for the company profile.
const (
	DefaultProfileURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/"
	DefaultCrumbURL   = "https://query2.finance.yahoo.com/v1/test/getcrumb"
	DefaultSessionURL = "https://fc.yahoo.com"
)

var errNoCrumb = errors.New("yahoo session: no crumb")

type profileResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// profileClient looks up company sectors. quoteSummary needs a session
// cookie plus a crumb bound to it; both are fetched once and renewed when
// Yahoo rejects them. Sectors are cached per symbol.
type profileClient struct {
	cfg     YahooConfig
	limiter *rate.Limiter

	mu      sync.Mutex
	crumb   string
	cookies []*http.Cookie

	sectors sync.Map
}

func newProfileClient(cfg YahooConfig, limiter *rate.Limiter) *profileClient {
	return &profileClient{cfg: cfg, limiter: limiter}
}

// Sector returns the sector for symbol, or "" when Yahoo has none (ETFs, funds).
func (p *profileClient) Sector(ctx context.Context, symbol string) (string, error) {
	if v, ok := p.sectors.Load(symbol); ok {
		return v.(string), nil
	}
	sector, err := p.lookup(ctx, symbol, true)
	if err != nil {
		return "", err
	}
	p.sectors.Store(symbol, sector)
	return sector, nil
}

func (p *profileClient) lookup(ctx context.Context, symbol string, renew bool) (string, error) {
	crumb, cookies, err := p.session(ctx)
	if err != nil {
		return "", err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	v := url.Values{}
	v.Set("modules", "assetProfile")
	v.Set("crumb", crumb)
	u := p.cfg.ProfileURL + url.PathEscape(symbol) + "?" + v.Encode()

	resp, err := p.get(ctx, u, cookies)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		p.reset()
		if renew {
			return p.lookup(ctx, symbol, false)
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var pr profileResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&pr); err != nil {
		return "", fmt.Errorf("decode profile response: %w", err)
	}
	if pr.QuoteSummary.Error != nil || len(pr.QuoteSummary.Result) == 0 {
		return "", nil
	}
	return strings.TrimSpace(pr.QuoteSummary.Result[0].AssetProfile.Sector), nil
}

// session returns the current crumb and cookies, creating them if needed.
func (p *profileClient) session(ctx context.Context) (string, []*http.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.crumb != "" {
		return p.crumb, p.cookies, nil
	}

	// The session host answers 404 but still sets the cookie.
	resp, err := p.get(ctx, p.cfg.SessionURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("yahoo session: %w", err)
	}
	cookies := resp.Cookies()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	resp, err = p.get(ctx, p.cfg.CrumbURL, cookies)
	if err != nil {
		return "", nil, fmt.Errorf("yahoo crumb: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("yahoo crumb: %w", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if err != nil {
		return "", nil, fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", nil, errNoCrumb
	}

	p.crumb, p.cookies = crumb, cookies
	return crumb, cookies, nil
}

func (p *profileClient) reset() {
	p.mu.Lock()
	p.crumb, p.cookies = "", nil
	p.mu.Unlock()
}

func (p *profileClient) get(ctx context.Context, u string, cookies []*http.Cookie) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := p.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	return resp, nil
}
