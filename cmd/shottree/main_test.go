package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shotLog = `GAME_ID,MATCHUP,LOCATION,W,FINAL_MARGIN,SHOT_NUMBER,PERIOD,GAME_CLOCK,SHOT_CLOCK,DRIBBLES,TOUCH_TIME,SHOT_DIST,PTS_TYPE,SHOT_RESULT,CLOSEST_DEFENDER,CLOSEST_DEFENDER_PLAYER_ID,CLOSE_DEF_DIST,FGM,PTS,player_name,player_id
21400890,"MAR 03, 2015 - GSW vs. LAC",H,W,17,1,2,4:12,9.0,0,0.5,24.1,3,made,"Paul, Chris",101108,1.0,1,3,stephen curry,201939
21400890,"MAR 03, 2015 - GSW vs. LAC",H,W,17,2,2,3:01,12.0,0,0.5,24.1,3,missed,"Paul, Chris",101108,1.0,0,0,stephen curry,201939
21400890,"MAR 03, 2015 - GSW vs. LAC",H,W,17,3,3,6:40,20.1,4,6.2,1.8,2,made,"Jordan, DeAndre",201599,5.2,1,2,stephen curry,201939
21400899,"MAR 04, 2015 - CHA @ BKN",A,W,24,1,1,1:09,10.8,2,1.9,7.7,2,made,"Anderson, Alan",101187,1.3,1,2,brian roberts,203148
`

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-format", "text"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeShotLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot_logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(shotLog), 0o644))
	return path
}

func TestReportCSV(t *testing.T) {
	csvPath := writeShotLog(t)
	export := filepath.Join(t.TempDir(), "summary.parquet")

	out, err := run(t, "report", "stephen", "curry", "--csv", csvPath, "--export", export)
	require.NoError(t, err)
	assert.Contains(t, out, "stephen curry")
	assert.Contains(t, out, "ingested 3")
	assert.Contains(t, out, "Layup, not contested, not quick_touch, off_dribble  100.00% (1/1)")
	assert.FileExists(t, export)

	partitioned, err := run(t, "report", "stephen curry", "--csv", csvPath, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, partitioned, "Layup, not contested, not quick_touch, off_dribble  100.00% (1/1)")
}

func TestTree(t *testing.T) {
	out, err := run(t, "tree", "brian roberts", "--csv", writeShotLog(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "brian roberts\n  Three\n"), out)
}

func TestReportNeedsSource(t *testing.T) {
	_, err := run(t, "report", "stephen curry")
	assert.ErrorIs(t, err, errNoSource)

	_, err = run(t, "report", "stephen curry", "--csv", "a.csv", "--db", "b.db")
	assert.Error(t, err)
}

func TestBadTaxonomy(t *testing.T) {
	_, err := run(t, "--taxonomy", filepath.Join(t.TempDir(), "missing.yaml"), "report", "x", "--csv", writeShotLog(t))
	assert.Error(t, err)
}

func TestImportAndPlayers(t *testing.T) {
	csvPath := writeShotLog(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "shots.db")

	out, err := run(t, "import", "--csv", csvPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "read 4 shots, inserted 4, skipped 0 rows")

	files, err := filepath.Glob(filepath.Join(dir, "parquet", "shots_*.parquet"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	out, err = run(t, "import", "--csv", csvPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already imported")

	out, err = run(t, "players", "--db", dbPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, out, "stephen curry")
	assert.Contains(t, out, "201,939")

	out, err = run(t, "report", "stephen curry", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ingested 3")

	out, err = run(t, "report", "stephen curry", "--parquet", files[0])
	require.NoError(t, err)
	assert.Contains(t, out, "ingested 3")
}

func TestFeed(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range []string{
			`{"type":"shot","data":{"player_name":"stephen curry","pts_type":3,"close_def_dist":1,"touch_time":1,"made":true}}`,
			`{"type":"shot","data":{"player_name":"stephen curry","pts_type":3,"close_def_dist":1,"touch_time":1,"made":false}}`,
			`{"type":"end"}`,
		} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	out, err := run(t, "feed", "stephen curry", "--url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "ingested 2")
	assert.Contains(t, out, "Three, contested, quick_touch, not off_dribble  50.00% (1/2)")
}
