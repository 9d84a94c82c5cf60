package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteTimeoutCoversWorstCaseChains(t *testing.T) {
	const providers = 7
	llmTimeout := 300 * time.Second
	chains := 4

	got := WriteTimeout(llmTimeout, providers, chains)
	assert.GreaterOrEqual(t, got, time.Duration(providers*chains)*llmTimeout)
	assert.Equal(t, 140*time.Minute+writeSlack, got)

	assert.Equal(t, 180*time.Second+writeSlack, WriteTimeout(180*time.Second, 0, 0))
}

func TestNewHTTPServerSizesForSlowestRoute(t *testing.T) {
	srv := NewHTTPServer("9000", http.NotFoundHandler(), 300*time.Second, 7)
	assert.Equal(t, ":9000", srv.Addr)
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	// GenerateResume runs two chains and TailorSections one per tailorable section.
	assert.GreaterOrEqual(t, srv.WriteTimeout, 7*4*300*time.Second)
}
