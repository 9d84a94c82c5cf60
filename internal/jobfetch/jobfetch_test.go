package jobfetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<html><head>
<title>Careers</title>
<meta property="og:title" content="Senior Data Analyst">
<meta property="og:site_name" content="Acme Corp">
</head><body>
<nav>Home | Jobs</nav>
<div class="job-description">
<p>We are hiring a   data analyst.</p>
<ul><li>SQL</li><li>Power BI</li></ul>
</div>
<footer>© Acme</footer>
<script>var x = 1;</script>
</body></html>`

func TestParseExtractsPosting(t *testing.T) {
	p, err := Parse(strings.NewReader(postingHTML))
	require.NoError(t, err)
	assert.Equal(t, "Senior Data Analyst", p.Title)
	assert.Equal(t, "Acme Corp", p.Company)
	assert.Equal(t, "We are hiring a data analyst.\nSQL\nPower BI", p.Description)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("<html><body><script>1</script></body></html>"))
	assert.ErrorIs(t, err, ErrEmptyPosting)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(postingHTML))
	}))
	defer srv.Close()

	p, err := NewUnrestricted(0).Fetch(context.Background(), srv.URL+"/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/jobs/1", p.URL)
	assert.Contains(t, p.Description, "Power BI")
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewUnrestricted(0).Fetch(context.Background(), srv.URL)
	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, fetchErr.Message, "404")

	_, err = New(0).Fetch(context.Background(), "ftp://example.com/job")
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "invalid URL", fetchErr.Message)
}

func TestFetchRefusesInternalAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request reached internal server: %s", r.URL)
	}))
	defer srv.Close()

	for _, target := range []string{
		srv.URL + "/jobs/1",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.7/",
		"http://[::1]:8080/",
		"http://0.0.0.0/",
	} {
		_, err := New(time.Second).Fetch(context.Background(), target)
		require.Error(t, err, target)
		assert.True(t, errors.Is(err, ErrBlockedAddress), "%s: %v", target, err)
	}
}

func TestBlockedIP(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"172.16.0.1":      true,
		"192.168.1.1":     true,
		"169.254.169.254": true,
		"::1":             true,
		"fd00::1":         true,
		"fe80::1":         true,
		"0.0.0.0":         true,
		"93.184.216.34":   false,
		"2606:4700::1111": false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, blockedIP(net.ParseIP(raw)), raw)
	}
}
