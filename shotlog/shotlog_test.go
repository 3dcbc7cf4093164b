package shotlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `GAME_ID,MATCHUP,LOCATION,W,FINAL_MARGIN,SHOT_NUMBER,PERIOD,GAME_CLOCK,SHOT_CLOCK,DRIBBLES,TOUCH_TIME,SHOT_DIST,PTS_TYPE,SHOT_RESULT,CLOSEST_DEFENDER,CLOSEST_DEFENDER_PLAYER_ID,CLOSE_DEF_DIST,FGM,PTS,player_name,player_id
21400899,"MAR 04, 2015 - CHA @ BKN",A,W,24,1,1,1:09,10.8,2,1.9,7.7,2,made,"Anderson, Alan",101187,1.3,1,2,brian roberts,203148
21400899,"MAR 04, 2015 - CHA @ BKN",A,W,24,2,1,0:14,3.4,0,0.8,28.2,3,missed,"Bogdanovic, Bojan",202711,6.1,0,0,brian roberts,203148
21400899,"MAR 04, 2015 - CHA @ BKN",A,W,24,3,1,0:00,,3,2.7,10.1,2,missed,"Bogdanovic, Bojan",202711,0.9,0,0,brian roberts,203148
21400890,"MAR 03, 2015 - GSW vs. LAC",H,W,17,1,2,4:12,9.0,0,0.5,24.1,3,made,"Paul, Chris",101108,4.0,1,3,stephen curry,201939
21400890,"MAR 03, 2015 - GSW vs. LAC",H,W,17,2,2,3:01,bad,0,0.5,24.1,3,made,"Paul, Chris",101108,4.0,1,3,stephen curry,201939
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot_logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func TestCSVSource(t *testing.T) {
	src := &CSVSource{Path: writeSample(t), Logger: quietLogger()}

	shots, err := Collect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, shots, 4)
	assert.Equal(t, 1, src.Skipped())

	first := shots[0]
	assert.Equal(t, "21400899", first.GameID)
	assert.Equal(t, "MAR 04, 2015 - CHA @ BKN", first.Matchup)
	assert.Equal(t, "brian roberts", first.PlayerName)
	assert.Equal(t, int64(203148), first.PlayerID)
	assert.Equal(t, int32(2), first.Dribbles)
	assert.InDelta(t, 1.9, first.TouchTime, 1e-6)
	assert.InDelta(t, 1.3, first.CloseDefDist, 1e-6)
	assert.Equal(t, int32(2), first.PtsType)
	assert.True(t, first.Made)

	assert.False(t, shots[1].Made)
	assert.Zero(t, shots[2].ShotClock)
	assert.Equal(t, "stephen curry", shots[3].PlayerName)
}

func TestReadCSVMissingColumn(t *testing.T) {
	err := ReadCSV(context.Background(), strings.NewReader("GAME_ID,FGM\n1,1\n"), quietLogger(), func(Shot) error { return nil })
	assert.ErrorIs(t, err, ErrMissingColumn)

	err = ReadCSV(context.Background(), strings.NewReader("GAME_ID,player_name\n1,x\n"), quietLogger(), func(Shot) error { return nil })
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSVFGMFallback(t *testing.T) {
	in := "player_name,FGM,PTS_TYPE\nx,1,2\nx,0,3\nx,,2\n"
	var got []Shot
	err := ReadCSV(context.Background(), strings.NewReader(in), quietLogger(), func(s Shot) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Made)
	assert.False(t, got[1].Made)
}

func TestCSVSourceSkipsOutOfRangeInts(t *testing.T) {
	in := "player_name,FGM,DRIBBLES,PLAYER_ID\nx,1,3000000000,1\nx,0,2,9000000000\n"
	path := filepath.Join(t.TempDir(), "shot_logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(in), 0o644))

	src := &CSVSource{Path: path, Logger: quietLogger()}
	shots, err := Collect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, shots, 1)
	assert.Equal(t, int32(2), shots[0].Dribbles)
	assert.Equal(t, int64(9000000000), shots[0].PlayerID)
	assert.Equal(t, 1, src.Skipped())
}

func TestPlayerFilter(t *testing.T) {
	src := PlayerFilter{
		Source: &CSVSource{Path: writeSample(t), Logger: quietLogger()},
		Player: "brian roberts",
	}
	shots, err := Collect(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, shots, 3)
	for _, s := range shots {
		assert.Equal(t, "brian roberts", s.PlayerName)
	}
}

func TestSliceSourceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SliceSource{{PlayerName: "x"}}.Each(ctx, func(Shot) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	shots := make([]Shot, 7)
	for i := range shots {
		shots[i].ShotNumber = int32(i)
	}

	parts := Partition(shots, 3)
	require.Len(t, parts, 3)
	total := 0
	for _, p := range parts {
		got, err := Collect(context.Background(), p)
		require.NoError(t, err)
		total += len(got)
	}
	assert.Equal(t, len(shots), total)

	assert.Len(t, Partition(shots[:2], 8), 2)
	assert.Len(t, Partition(nil, 0), 1)
}

func TestColumn(t *testing.T) {
	s := Shot{Dribbles: 4, TouchTime: 3.5, CloseDefDist: 2.25, PtsType: 3}
	for _, col := range NumericColumns {
		_, ok := s.Column(col)
		assert.True(t, ok, col)
	}
	v, ok := s.Column("touch_time")
	require.True(t, ok)
	assert.Equal(t, 3.5, v)
	_, ok = s.Column("PLAYER_NAME")
	assert.False(t, ok)
}

func TestParquetRoundTrip(t *testing.T) {
	shots, err := Collect(context.Background(), &CSVSource{Path: writeSample(t), Logger: quietLogger()})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "shots.parquet")
	require.NoError(t, WriteParquet(out, shots))

	got, err := Collect(context.Background(), ParquetSource{Path: out})
	require.NoError(t, err)
	assert.Equal(t, shots, got)

	dir := t.TempDir()
	path, err := WriteBatchParquetAtomic(dir, shots[:2])
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	got, err = Collect(context.Background(), ParquetSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, shots[:2], got)
}

func TestBatchWriter(t *testing.T) {
	dir := t.TempDir()

	empty, err := NewBatchWriter(dir)
	require.NoError(t, err)
	path, rows, err := empty.Finalize()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Zero(t, rows)

	w, err := NewBatchWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Write([]Shot{{PlayerName: "a", Made: true}}))
	require.NoError(t, w.Write([]Shot{{PlayerName: "b"}, {PlayerName: "c"}}))
	assert.Equal(t, 3, w.Rows())

	path, rows, err = w.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, w.OutPath(), path)
	assert.Error(t, w.Write([]Shot{{}}))

	got, err := Collect(context.Background(), ParquetSource{Path: path})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Made)
	assert.Equal(t, "c", got[2].PlayerName)

	aborted, err := NewBatchWriter(dir)
	require.NoError(t, err)
	require.NoError(t, aborted.Write([]Shot{{PlayerName: "d"}}))
	require.NoError(t, aborted.Abort())
	assert.NoFileExists(t, aborted.OutPath())
	staged, err := filepath.Glob(filepath.Join(dir, "tmp", "*"))
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestImportLog(t *testing.T) {
	csvPath := writeSample(t)
	digest, err := FileDigest(csvPath)
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	logPath := filepath.Join(t.TempDir(), "state", "imported.log")
	l, err := OpenImportLog(logPath)
	require.NoError(t, err)
	assert.False(t, l.Has(digest))
	require.NoError(t, l.Add(digest))
	require.NoError(t, l.Add(digest))
	assert.Equal(t, 1, l.Count())
	assert.Error(t, l.Add(""))
	require.NoError(t, l.Close())

	reopened, err := OpenImportLog(logPath)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.Has(digest))
	assert.Equal(t, 1, reopened.Count())
}
