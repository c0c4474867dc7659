// Package lrclib is a thin client for the LRCLIB lyrics API.
// https://lrclib.net/docs
package lrclib

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.ayling.dev/lrcside/clientutil"
)

var ErrNotFound = errors.New("lyrics not found")

const DefaultBaseURL = `https://lrclib.net/api`
const DefaultUserAgent = `lrcside/v0.1.0 ( https://go.ayling.dev/lrcside )`

const defaultTimeout = 15 * time.Second

type Client struct {
	BaseURL   string
	UserAgent string
	RateLimit time.Duration
	Timeout   time.Duration

	// InsecureTLS skips TLS certificate verification for this client.
	// Only applies when the client owns its transport.
	InsecureTLS bool

	initOnce   sync.Once
	HTTPClient *http.Client
}

// Query identifies a track on the signature endpoint. TrackName, ArtistName,
// and a positive Duration are required for an exact match, AlbumName helps
// but may be empty.
type Query struct {
	TrackName  string
	ArtistName string
	AlbumName  string
	Duration   int // whole seconds
}

// Values returns the query as the get endpoint's parameters.
func (q Query) Values() url.Values {
	urlV := url.Values{}
	urlV.Set("track_name", q.TrackName)
	urlV.Set("artist_name", q.ArtistName)
	urlV.Set("album_name", q.AlbumName)
	urlV.Set("duration", strconv.Itoa(q.Duration))
	return urlV
}

type Lyrics struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

func (l *Lyrics) Synced() bool {
	return l.SyncedLyrics != ""
}

// Text returns the synced lyrics when present, otherwise the plain ones.
func (l *Lyrics) Text() string {
	if l.SyncedLyrics != "" {
		return l.SyncedLyrics
	}
	return l.PlainLyrics
}

func (c *Client) init() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultTimeout}
		if c.Timeout > 0 {
			c.HTTPClient.Timeout = c.Timeout
		}
		if c.InsecureTLS {
			c.HTTPClient.Transport = clientutil.InsecureTransport()
		}
	}
	c.HTTPClient = clientutil.Wrap(c.HTTPClient, clientutil.Chain(
		clientutil.WithCache(),
		clientutil.WithUserAgent(c.UserAgent),
		clientutil.WithRateLimit(c.RateLimit),
		clientutil.WithLogging(slog.Default()),
	))
}

func (c *Client) Get(ctx context.Context, q Query) (*Lyrics, error) {
	c.initOnce.Do(c.init)

	url, _ := url.Parse(joinPath(c.BaseURL, "get"))
	url.RawQuery = q.Values().Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("lrclib returned non 2xx: %w", StatusError(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseLyrics(body)
}

// parseLyrics accepts both of the shapes the API serves, a single object from
// the signature endpoint or an array of candidates.
func parseLyrics(body []byte) (*Lyrics, error) {
	body = bytes.TrimSpace(body)

	var l Lyrics
	if len(body) > 0 && body[0] == '[' {
		var ls []Lyrics
		if err := json.Unmarshal(body, &ls); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(ls) == 0 {
			return nil, ErrNotFound
		}
		l = ls[0]
	} else {
		if err := json.Unmarshal(body, &l); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if l.ID == 0 {
		return nil, ErrNotFound
	}
	if l.Text() == "" {
		return nil, ErrNotFound
	}
	return &l, nil
}

type StatusError int

func (se StatusError) Error() string {
	return strconv.Itoa(int(se))
}

func joinPath(base string, p ...string) string {
	r, _ := url.JoinPath(base, p...)
	return r
}
