package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tickermate/internal/domain/entity"
	"tickermate/internal/usecase/fetch"
)

const statusPageSize = 40

// StatusAPIConfig configures a Mastodon-compatible statuses endpoint.
type StatusAPIConfig struct {
	// BaseURL is the instance root, e.g. https://truthsocial.com
	BaseURL string `yaml:"base_url"`
	// Account is the handle without '@', used to resolve AccountID when empty.
	Account string `yaml:"account"`
	// AccountID skips the lookup call when set.
	AccountID string `yaml:"account_id"`
	// Source labels the returned items.
	Source string `yaml:"source"`
	// IncludeReblogs keeps boosted posts.
	IncludeReblogs bool `yaml:"include_reblogs"`
}

// StatusAPIStrategy pages through /api/v1/accounts/{id}/statuses.
type StatusAPIStrategy struct {
	cfg StatusAPIConfig
	src httpSource
}

// NewStatusAPIStrategy creates the statuses API strategy.
func NewStatusAPIStrategy(cfg StatusAPIConfig, opts HTTPOptions) *StatusAPIStrategy {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &StatusAPIStrategy{cfg: cfg, src: newHTTPSource("status-api", opts)}
}

// Name returns the strategy identifier.
func (s *StatusAPIStrategy) Name() string { return "status-api" }

type apiAccount struct {
	ID string `json:"id"`
}

type apiStatus struct {
	ID        string     `json:"id"`
	CreatedAt string     `json:"created_at"`
	Content   string     `json:"content"`
	URL       string     `json:"url"`
	Reblog    *apiStatus `json:"reblog"`
}

// Fetch collects up to q.Limit matching statuses, newest first.
func (s *StatusAPIStrategy) Fetch(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error) {
	accountID, err := s.resolveAccount(ctx)
	if err != nil {
		return nil, err
	}

	c := fetch.NewCollector(q)
	maxID := ""
	for page := 1; page <= s.src.opts.MaxPages && !c.Full(); page++ {
		var statuses []apiStatus
		if err := s.src.getJSON(ctx, s.statusesURL(accountID, maxID), &statuses); err != nil {
			return nil, err
		}
		if len(statuses) == 0 {
			break
		}

		kept := len(c.Items())
		for _, st := range statuses {
			if item, ok := s.toItem(st); ok && c.Add(item) {
				break
			}
		}
		s.src.logPage(page, len(statuses), len(c.Items())-kept)

		maxID = statuses[len(statuses)-1].ID
		if len(statuses) < statusPageSize {
			break
		}
	}
	return c.Items(), nil
}

func (s *StatusAPIStrategy) resolveAccount(ctx context.Context) (string, error) {
	if s.cfg.AccountID != "" {
		return s.cfg.AccountID, nil
	}
	if s.cfg.Account == "" {
		return "", fmt.Errorf("%w: status API needs an account or account id", fetch.ErrParse)
	}
	var acct apiAccount
	u := s.cfg.BaseURL + "/api/v1/accounts/lookup?acct=" + url.QueryEscape(s.cfg.Account)
	if err := s.src.getJSON(ctx, u, &acct); err != nil {
		return "", fmt.Errorf("lookup account %s: %w", s.cfg.Account, err)
	}
	if acct.ID == "" {
		return "", fmt.Errorf("%w: empty account id for %s", fetch.ErrParse, s.cfg.Account)
	}
	s.cfg.AccountID = acct.ID
	return acct.ID, nil
}

func (s *StatusAPIStrategy) statusesURL(accountID, maxID string) string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(statusPageSize))
	v.Set("exclude_replies", "true")
	if maxID != "" {
		v.Set("max_id", maxID)
	}
	return fmt.Sprintf("%s/api/v1/accounts/%s/statuses?%s", s.cfg.BaseURL, url.PathEscape(accountID), v.Encode())
}

func (s *StatusAPIStrategy) toItem(st apiStatus) (entity.ContentItem, bool) {
	if st.Reblog != nil {
		if !s.cfg.IncludeReblogs {
			return entity.ContentItem{}, false
		}
		st = *st.Reblog
	}
	var created time.Time
	if t, err := time.Parse(time.RFC3339Nano, st.CreatedAt); err == nil {
		created = t
	}
	return entity.NewContentItem(created, htmlToText(st.Content), s.cfg.Source, st.URL), true
}
