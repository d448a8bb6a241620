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
	"tickermate/internal/utils/timeago"
)

// DefaultStreamURL is the StockTwits symbol stream; "{symbol}" is replaced.
const DefaultStreamURL = "https://api.stocktwits.com/api/2/streams/symbol/{symbol}.json"

var streamLayouts = []string{"2006-01-02T15:04:05Z", time.RFC3339}

// StreamConfig configures the per-symbol message stream strategy.
type StreamConfig struct {
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
}

// StreamStrategy reads a StockTwits-compatible symbol stream, paging
// backwards with the "max" cursor.
type StreamStrategy struct {
	cfg StreamConfig
	src httpSource
}

// NewStreamStrategy creates the message stream strategy.
func NewStreamStrategy(cfg StreamConfig, opts HTTPOptions) *StreamStrategy {
	if cfg.URL == "" {
		cfg.URL = DefaultStreamURL
	}
	if cfg.Source == "" {
		cfg.Source = "StockTwits"
	}
	return &StreamStrategy{cfg: cfg, src: newHTTPSource("stream", opts)}
}

// Name returns the strategy identifier.
func (s *StreamStrategy) Name() string { return "stream" }

type streamResponse struct {
	Cursor struct {
		More bool  `json:"more"`
		Max  int64 `json:"max"`
	} `json:"cursor"`
	Messages []streamMessage `json:"messages"`
}

type streamMessage struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// Fetch collects up to q.Limit messages, newest first.
func (s *StreamStrategy) Fetch(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error) {
	base := strings.ReplaceAll(s.cfg.URL, "{symbol}", url.PathEscape(q.Symbol))

	c := fetch.NewCollector(q)
	var cursor int64
	for page := 1; page <= s.src.opts.MaxPages && !c.Full(); page++ {
		pageURL, err := cursorURL(base, cursor)
		if err != nil {
			return nil, err
		}

		var resp streamResponse
		if err := s.src.getJSON(ctx, pageURL, &resp); err != nil {
			return nil, err
		}
		if len(resp.Messages) == 0 {
			break
		}

		kept := len(c.Items())
		for _, m := range resp.Messages {
			if c.Add(s.toItem(m)) {
				break
			}
		}
		s.src.logPage(page, len(resp.Messages), len(c.Items())-kept)

		next := resp.Cursor.Max
		if next == 0 {
			next = resp.Messages[len(resp.Messages)-1].ID - 1
		}
		if !resp.Cursor.More || next <= 0 || next == cursor {
			break
		}
		cursor = next
	}
	return c.Items(), nil
}

// cursorURL sets the "max" query parameter on base, keeping any query
// the configured URL already carries.
func cursorURL(base string, cursor int64) (string, error) {
	if cursor <= 0 {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid stream URL %q", fetch.ErrParse, base)
	}
	v := u.Query()
	v.Set("max", strconv.FormatInt(cursor, 10))
	u.RawQuery = v.Encode()
	return u.String(), nil
}

func (s *StreamStrategy) toItem(m streamMessage) entity.ContentItem {
	created, _ := timeago.ParseTimestamp(m.CreatedAt, streamLayouts)
	link := ""
	if m.ID > 0 {
		link = fmt.Sprintf("https://stocktwits.com/message/%d", m.ID)
	}
	return entity.NewContentItem(created, m.Body, s.cfg.Source, link)
}
