package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

const constituentsHTML = `
<html><body>
<table id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th></tr>
<tr><td>MMM</td><td>3M</td></tr>
<tr><td>AAPL</td><td>Apple</td></tr>
<tr><td>BRK.B</td><td>Berkshire Hathaway</td></tr>
<tr><td>AAPL</td><td>Apple duplicate row</td></tr>
</tbody>
</table>
</body></html>`

func TestUniverseScraper_Symbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituentsHTML)
	}))
	defer srv.Close()

	s := NewUniverseScraper(httputil.New(logger.NewNop()), srv.URL, logger.NewNop())
	symbols, err := s.Symbols(context.Background())
	require.NoError(t, err)

	// deduplicated, dot normalized, sorted
	assert.Equal(t, []string{"AAPL", "BRK-B", "MMM"}, symbols)
}

func TestUniverseScraper_EmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>no table here</p></body></html>")
	}))
	defer srv.Close()

	s := NewUniverseScraper(httputil.New(logger.NewNop()), srv.URL, logger.NewNop())
	_, err := s.Symbols(context.Background())
	assert.Error(t, err)
}
