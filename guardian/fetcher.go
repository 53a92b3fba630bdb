package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Article is one archived news item as fetched from the content API. The
// JSON tags match the JSONL interchange format consumed by ingestion.
type Article struct {
	ID                 string `json:"id"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	BodyText           string `json:"bodyText"`
}

// Client fetches articles from the Guardian content API. Page requests are
// paced with a rate limiter to stay under the API's request quota.
type Client struct {
	apiURL  string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// FetchOptions bounds a fetch run: an inclusive date range and a target
// article count.
type FetchOptions struct {
	FromDate string
	ToDate   string
	PageSize int
	Target   int
}

type searchResponse struct {
	Response struct {
		Total   int `json:"total"`
		Pages   int `json:"pages"`
		Results []struct {
			ID                 string `json:"id"`
			WebTitle           string `json:"webTitle"`
			WebURL             string `json:"webUrl"`
			WebPublicationDate string `json:"webPublicationDate"`
			Fields             struct {
				BodyText string `json:"bodyText"`
				Headline string `json:"headline"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func NewClient(apiURL, apiKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

// CheckTotal reports how many articles the API holds for the date range.
func (c *Client) CheckTotal(ctx context.Context, opts FetchOptions) (int, error) {
	params := c.baseParams(opts)
	params.Set("page-size", "1")

	parsed, err := c.search(ctx, params)
	if err != nil {
		return 0, err
	}
	return parsed.Response.Total, nil
}

// FetchArticles pages through the API until the target count is reached or
// results run out. Body text arrives as HTML fragments and is flattened to
// plain text.
func (c *Client) FetchArticles(ctx context.Context, opts FetchOptions) ([]Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("guardian API key is not set")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.Target <= 0 {
		opts.Target = 200
	}

	articles := make([]Article, 0, opts.Target)
	page := 1

	c.logger.Printf("fetching up to %d articles (%s to %s)", opts.Target, opts.FromDate, opts.ToDate)

	for len(articles) < opts.Target {
		params := c.baseParams(opts)
		params.Set("page-size", strconv.Itoa(opts.PageSize))
		params.Set("page", strconv.Itoa(page))
		params.Set("show-fields", "bodyText,headline")
		params.Set("order-by", "oldest")

		parsed, err := c.search(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if len(parsed.Response.Results) == 0 {
			c.logger.Printf("no more results after page %d", page-1)
			break
		}

		for _, item := range parsed.Response.Results {
			if len(articles) >= opts.Target {
				break
			}
			articles = append(articles, Article{
				ID:                 item.ID,
				WebTitle:           item.WebTitle,
				WebURL:             item.WebURL,
				WebPublicationDate: item.WebPublicationDate,
				BodyText:           StripHTML(item.Fields.BodyText),
			})
		}

		c.logger.Printf("fetched page %d, %d articles so far", page, len(articles))

		if page >= parsed.Response.Pages {
			break
		}
		page++
	}

	return articles, nil
}

func (c *Client) baseParams(opts FetchOptions) url.Values {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("from-date", opts.FromDate)
	params.Set("to-date", opts.ToDate)
	params.Set("tag", "type/article")
	return params
}

func (c *Client) search(ctx context.Context, params url.Values) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call guardian API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("guardian API returned %s: %s", resp.Status, string(data))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode guardian response: %w", err)
	}

	return &parsed, nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML flattens an HTML fragment to plain text: tags removed,
// entities decoded, whitespace collapsed.
func StripHTML(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
