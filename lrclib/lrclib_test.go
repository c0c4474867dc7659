package lrclib_test

import (
	"context"
	"embed"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.ayling.dev/lrcside/clientutil"
	"go.ayling.dev/lrcside/lrclib"
)

//go:embed testdata
var responses embed.FS

func TestGetSynced(t *testing.T) {
	var c lrclib.Client
	c.HTTPClient = clientutil.FSClient(responses, "testdata/synced")

	l, err := c.Get(context.Background(), lrclib.Query{TrackName: "I Want to Live", ArtistName: "Borislav Slavov", Duration: 233})
	require.NoError(t, err)
	assert.True(t, l.Synced())
	assert.True(t, strings.HasPrefix(l.Text(), "[00:17.12] I feel your breath upon my neck"))
	assert.Equal(t, 3396226, l.ID)
}

func TestGetPlain(t *testing.T) {
	var c lrclib.Client
	c.HTTPClient = clientutil.FSClient(responses, "testdata/plain")

	l, err := c.Get(context.Background(), lrclib.Query{TrackName: "Wings", ArtistName: "The Fall", Duration: 244})
	require.NoError(t, err)
	assert.False(t, l.Synced())
	assert.True(t, strings.HasPrefix(l.Text(), "Back in nineteen sixty-four"))
}

func TestGetArrayTakesFirst(t *testing.T) {
	var c lrclib.Client
	c.HTTPClient = clientutil.FSClient(responses, "testdata/multi")

	l, err := c.Get(context.Background(), lrclib.Query{TrackName: "Oblivion", ArtistName: "Grimes", Duration: 251})
	require.NoError(t, err)
	assert.Equal(t, 2059119, l.ID)
	assert.True(t, l.Synced())
}

func TestGetNoResults(t *testing.T) {
	for _, tdir := range []string{"testdata/empty", "testdata/noid", "testdata/instrumental"} {
		var c lrclib.Client
		c.HTTPClient = clientutil.FSClient(responses, tdir)

		l, err := c.Get(context.Background(), lrclib.Query{TrackName: "a", ArtistName: "b", Duration: 1})
		require.ErrorIs(t, err, lrclib.ErrNotFound, tdir)
		assert.Nil(t, l, tdir)
	}
}

func TestGetNotFoundStatus(t *testing.T) {
	var c lrclib.Client
	c.HTTPClient = &http.Client{Transport: clientutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: http.NoBody}, nil
	})}

	_, err := c.Get(context.Background(), lrclib.Query{TrackName: "a", ArtistName: "b", Duration: 1})
	require.ErrorIs(t, err, lrclib.ErrNotFound)
}

func TestGetServerError(t *testing.T) {
	var c lrclib.Client
	c.HTTPClient = &http.Client{Transport: clientutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusInternalServerError, Header: http.Header{}, Body: http.NoBody}, nil
	})}

	_, err := c.Get(context.Background(), lrclib.Query{TrackName: "a", ArtistName: "b", Duration: 1})
	require.Error(t, err)
	require.NotErrorIs(t, err, lrclib.ErrNotFound)

	var se lrclib.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, int(se))
}

func TestGetTransportError(t *testing.T) {
	var c lrclib.Client
	c.HTTPClient = &http.Client{Transport: clientutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}

	l, err := c.Get(context.Background(), lrclib.Query{TrackName: "a", ArtistName: "b", Duration: 1})
	require.Error(t, err)
	require.NotErrorIs(t, err, lrclib.ErrNotFound)
	assert.Nil(t, l)
}

func TestGetInsecureTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": 9, "trackName": "X", "artistName": "Y", "plainLyrics": "la la"}`)
	}))
	defer srv.Close()

	// the binaries wrap the default transport before the client's first request
	defer func(old http.RoundTripper) { http.DefaultTransport = old }(http.DefaultTransport)
	http.DefaultTransport = clientutil.Chain(clientutil.WithLogging(slog.Default()))(http.DefaultTransport)

	var verifying lrclib.Client
	verifying.BaseURL = srv.URL
	_, err := verifying.Get(context.Background(), lrclib.Query{TrackName: "X", ArtistName: "Y", Duration: 1})
	require.Error(t, err, "server cert is self signed")

	var insecure lrclib.Client
	insecure.BaseURL = srv.URL
	insecure.InsecureTLS = true
	l, err := insecure.Get(context.Background(), lrclib.Query{TrackName: "X", ArtistName: "Y", Duration: 1})
	require.NoError(t, err)
	assert.Equal(t, "la la", l.Text())
}

func TestGetRequest(t *testing.T) {
	var gotURL, gotUserAgent string
	var c lrclib.Client
	c.HTTPClient = &http.Client{Transport: clientutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		gotUserAgent = r.Header.Get("User-Agent")
		body := `{"id": 1, "trackName": "X", "artistName": "Y", "plainLyrics": "la la"}`
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}, nil
	})}

	l, err := c.Get(context.Background(), lrclib.Query{TrackName: "X", ArtistName: "Y", AlbumName: "Z", Duration: 225})
	require.NoError(t, err)
	assert.Equal(t, "la la", l.Text())
	assert.Equal(t, "https://lrclib.net/api/get?album_name=Z&artist_name=Y&duration=225&track_name=X", gotURL)
	assert.Equal(t, lrclib.DefaultUserAgent, gotUserAgent)
}

func TestGetEscapesParams(t *testing.T) {
	var gotQuery string
	var c lrclib.Client
	c.HTTPClient = &http.Client{Transport: clientutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotQuery = r.URL.RawQuery
		body := `{"id": 2, "plainLyrics": "ok"}`
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}, nil
	})}

	_, err := c.Get(context.Background(), lrclib.Query{TrackName: "Sign \"O\" the Times", ArtistName: "Prince & The Revolution", Duration: 296})
	require.NoError(t, err)
	assert.Equal(t, `album_name=&artist_name=Prince+%26+The+Revolution&duration=296&track_name=Sign+%22O%22+the+Times`, gotQuery)
}
