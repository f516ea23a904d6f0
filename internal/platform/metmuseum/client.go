// Package metmuseum is a thin client for the Metropolitan Museum of Art
// collection API. It does not cache or retry; callers decide what a failure
// means.
package metmuseum

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://collectionapi.metmuseum.org/public/collection/v1"

// ErrNotFound is returned when the API answers 404 for an object.
var ErrNotFound = errors.New("met object not found")

// StatusError carries a non-2xx status other than 404.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("met %s: unexpected status code: %d", e.Endpoint, e.Code)
}

// Recorder observes outbound calls. *metrics.Metrics satisfies it.
type Recorder interface {
	RemoteRequest(endpoint, outcome string)
}

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RPS       int
	Recorder  Recorder
}

type Client struct {
	http     *resty.Client
	limiter  *rate.Limiter
	recorder Recorder
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 10
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Client{
		http:     rc,
		limiter:  rate.NewLimiter(rate.Limit(opts.RPS), 1),
		recorder: opts.Recorder,
	}
}

// SearchResult matches /search.
type SearchResult struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

// Object matches /objects/{id}. Year bounds are pointers so that a missing
// value is distinguishable from year 0.
type Object struct {
	ObjectID          int      `json:"objectID"`
	Title             string   `json:"title"`
	ArtistDisplayName string   `json:"artistDisplayName"`
	ArtistDisplayBio  string   `json:"artistDisplayBio"`
	ObjectDate        string   `json:"objectDate"`
	ObjectBeginDate   *int     `json:"objectBeginDate"`
	ObjectEndDate     *int     `json:"objectEndDate"`
	PrimaryImage      string   `json:"primaryImage"`
	PrimaryImageSmall string   `json:"primaryImageSmall"`
	AdditionalImages  []string `json:"additionalImages"`
	Culture           string   `json:"culture"`
	Period            string   `json:"period"`
	Country           string   `json:"country"`
	City              string   `json:"city"`
	Medium            string   `json:"medium"`
	Dimensions        string   `json:"dimensions"`
	Department        string   `json:"department"`
	Classification    string   `json:"classification"`
	CreditLine        string   `json:"creditLine"`
	ObjectURL         string   `json:"objectURL"`
	IsPublicDomain    bool     `json:"isPublicDomain"`
	MetadataDate      string   `json:"metadataDate"`
	Repository        string   `json:"repository"`
}

// Search runs a keyword search. The API returns a null objectIDs list when
// nothing matches; that comes back as an empty slice.
func (c *Client) Search(ctx context.Context, query string, hasImages bool) (*SearchResult, error) {
	var res SearchResult
	if err := c.get(ctx, "search", "/search", map[string]string{
		"q":         query,
		"hasImages": strconv.FormatBool(hasImages),
	}, &res); err != nil {
		return nil, err
	}
	if res.ObjectIDs == nil {
		res.ObjectIDs = []int{}
	}
	return &res, nil
}

func (c *Client) Object(ctx context.Context, id int) (*Object, error) {
	var res Object
	if err := c.get(ctx, "objects", "/objects/"+strconv.Itoa(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		c.record(endpoint, "cancelled")
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(target).
		Get(path)
	if err != nil {
		c.record(endpoint, "error")
		return fmt.Errorf("met %s: %w", endpoint, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		c.record(endpoint, "not_found")
		return ErrNotFound
	case !resp.IsSuccess():
		c.record(endpoint, "status_"+strconv.Itoa(resp.StatusCode()))
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode()}
	}

	c.record(endpoint, "ok")
	return nil
}

func (c *Client) record(endpoint, outcome string) {
	if c.recorder != nil {
		c.recorder.RemoteRequest(endpoint, outcome)
	}
}
