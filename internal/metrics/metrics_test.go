package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/page2", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	rec := New()
	rec.ObservePage("https://fashion-studio.dicoding.dev", "200")
	rec.ObservePage("https://fashion-studio.dicoding.dev/page2", "200")
	rec.ObserveRecords("https://fashion-studio.dicoding.dev", 20)
	rec.ObserveRecords("https://fashion-studio.dicoding.dev", 0)
	rec.SetRowsTransformed(18)
	rec.ObserveSink("csv", true)
	rec.ObserveSink("postgres", false)
	rec.ObserveRun(2 * time.Second)

	require.InDelta(t, 2, testutil.ToFloat64(rec.pagesFetched), 1e-9)
	require.InDelta(t, 20, testutil.ToFloat64(rec.recordsExtracted), 1e-9)
	require.InDelta(t, 18, testutil.ToFloat64(rec.rowsTransformed), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(rec.sinkWrites.WithLabelValues("postgres", ResultFailure)), 1e-9)
	require.Equal(t, 1, testutil.CollectAndCount(rec.runDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var rec *Recorder
	rec.ObservePage("https://example.com", "200")
	rec.ObserveRecords("https://example.com", 3)
	rec.SetRowsTransformed(1)
	rec.ObserveSink("csv", true)
	rec.ObserveRun(time.Second)
	require.Nil(t, rec.Registry())
	require.NoError(t, rec.WriteTextfile("ignored.prom"))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	rec := New()
	rec.ObserveSink("sheets", true)
	path := filepath.Join(t.TempDir(), "etl.prom")
	require.NoError(t, rec.WriteTextfile(path))

	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `etl_sink_writes_total{result="success",sink="sheets"} 1`))
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
