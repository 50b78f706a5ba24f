package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bastiangx/pinserve/internal/logger"
	"github.com/buger/jsonparser"
	"github.com/charmbracelet/log"
)

const (
	// DefaultEndpoint is the Google Input Tools request URL.
	DefaultEndpoint = "https://inputtools.google.com/request"
	// DefaultInputTool selects the simplified Chinese pinyin IME.
	DefaultInputTool = "zh-t-i0-pinyin"
	// DefaultTimeout bounds one backend round trip.
	DefaultTimeout = 3 * time.Second

	successTag  = "SUCCESS"
	maxBodySize = 1 << 20
)

var errShape = errors.New("unexpected response shape")

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	Endpoint   string
	InputTool  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

func (o *Options) defaults() {
	if o.Endpoint == "" {
		o.Endpoint = DefaultEndpoint
	}
	if o.InputTool == "" {
		o.InputTool = DefaultInputTool
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Logger == nil {
		o.Logger = logger.New("suggest")
	}
}

// Client is the HTTP binding to the conversion backend. Each Convert call
// is one GET request; nothing is retried and nothing is shared between calls.
type Client struct {
	hc       *http.Client
	endpoint string
	itc      string
	log      *log.Logger
}

// NewClient builds a Client.
func NewClient(opts Options) *Client {
	opts.defaults()
	return &Client{
		hc:       opts.HTTPClient,
		endpoint: opts.Endpoint,
		itc:      opts.InputTool,
		log:      opts.Logger,
	}
}

// Convert asks the backend for up to limit candidates. Any failure is logged
// and reported as no candidates.
func (c *Client) Convert(ctx context.Context, text string, limit int) []string {
	if text == "" || limit < 1 {
		return nil
	}
	start := time.Now()
	out, err := c.fetch(ctx, text, limit)
	if err != nil {
		c.log.Warnf("conversion failed for '%s': %v", text, err)
		return nil
	}
	c.log.Debugf("Took [ %v ] for '%s' (%d candidates)", time.Since(start), text, len(out))
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *Client) fetch(ctx context.Context, text string, limit int) ([]string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("itc", c.itc)
	q.Set("text", text)
	q.Set("num", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return ParseResponse(body)
}

// ParseResponse reads the candidate list out of a backend payload:
//
//	["SUCCESS", [["nihao", ["你好", "尼好", ...], ...]]]
//
// Only the candidates of the first pair are used. Any other shape is an error.
func ParseResponse(body []byte) ([]string, error) {
	tag, err := jsonparser.GetString(body, "[0]")
	if err != nil {
		return nil, fmt.Errorf("status tag: %w", err)
	}
	if tag != successTag {
		return nil, fmt.Errorf("backend answered %q", tag)
	}

	list, dt, _, err := jsonparser.Get(body, "[1]", "[0]", "[1]")
	if err != nil {
		return nil, fmt.Errorf("candidate list: %w", err)
	}
	if dt != jsonparser.Array {
		return nil, errShape
	}

	var (
		out     []string
		itemErr error
	)
	_, err = jsonparser.ArrayEach(list, func(value []byte, dt jsonparser.ValueType, _ int, _ error) {
		if itemErr != nil {
			return
		}
		if dt != jsonparser.String {
			itemErr = errShape
			return
		}
		s, perr := jsonparser.ParseString(value)
		if perr != nil {
			itemErr = perr
			return
		}
		out = append(out, s)
	})
	if err != nil {
		return nil, err
	}
	if itemErr != nil {
		return nil, itemErr
	}
	return out, nil
}
