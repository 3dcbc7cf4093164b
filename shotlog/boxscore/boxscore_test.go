package boxscore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/shottree/shotlog"
)

const page = `<html><body>
<h1>Game log</h1>
<table class="summary"><tr><th>ignored</th></tr><tr><td>1</td></tr></table>
<table class="shots">
  <thead>
    <tr><th>GAME_ID</th><th>SHOT_NUMBER</th><th>DRIBBLES</th><th>TOUCH_TIME</th><th>CLOSE_DEF_DIST</th><th>SHOT_DIST</th><th>PTS_TYPE</th><th>SHOT_RESULT</th><th>player_name</th></tr>
  </thead>
  <tbody>
    <tr><td>g1</td><td>1</td><td>0</td><td>0.9</td><td>5.1</td><td>25.0</td><td>3</td><td>made</td><td>stephen curry</td></tr>
    <tr><td>g1</td><td>2</td><td>4</td><td>4.2</td><td>1.0</td><td>2.1</td><td>2</td><td>missed</td><td> stephen curry </td></tr>
    <tr><td>g1</td><td>x</td><td>4</td><td>4.2</td><td>1.0</td><td>2.1</td><td>2</td><td>missed</td><td>stephen curry</td></tr>
  </tbody>
</table>
</body></html>`

func TestParse(t *testing.T) {
	shots, skipped, err := Parse(strings.NewReader(page), defaultSelector)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, shots, 2)

	assert.Equal(t, "g1", shots[0].GameID)
	assert.Equal(t, int32(3), shots[0].PtsType)
	assert.True(t, shots[0].Made)
	assert.InDelta(t, 5.1, shots[0].CloseDefDist, 1e-6)

	assert.Equal(t, int32(4), shots[1].Dribbles)
	assert.False(t, shots[1].Made)
	assert.Equal(t, "stephen curry", shots[1].PlayerName)
}

func TestParseNoTable(t *testing.T) {
	_, _, err := Parse(strings.NewReader("<html><body></body></html>"), defaultSelector)
	assert.Error(t, err)
}

func TestPageSource(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/games/g1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := Page{URL: srv.URL + "/games/g1", Config: DefaultConfig(), Client: srv.Client(), Logger: logger}
	shots, err := shotlog.Collect(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, shots, 2)
	assert.Equal(t, DefaultConfig().UserAgent, gotUA)

	missing := Page{URL: srv.URL + "/games/none", Client: srv.Client(), Logger: logger}
	_, err = shotlog.Collect(context.Background(), missing)
	assert.ErrorContains(t, err, "404")
}
