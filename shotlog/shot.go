// Package shotlog holds the shot attempt record and the sources that produce
// it: CSV shot logs, Parquet archives and the import log used to avoid loading
// the same file twice.
package shotlog

import (
	"context"
	"strings"
)

// Shot is a single field goal attempt.
//
// Field names follow the public NBA shot log export. Distances are in feet and
// times in seconds.
type Shot struct {
	GameID          string  `parquet:"game_id,dict" json:"game_id"`
	Matchup         string  `parquet:"matchup,dict" json:"matchup"`
	Location        string  `parquet:"location,dict" json:"location"`
	ShotNumber      int32   `parquet:"shot_number" json:"shot_number"`
	Period          int32   `parquet:"period" json:"period"`
	GameClock       string  `parquet:"game_clock" json:"game_clock"`
	ShotClock       float32 `parquet:"shot_clock" json:"shot_clock"`
	Dribbles        int32   `parquet:"dribbles" json:"dribbles"`
	TouchTime       float32 `parquet:"touch_time" json:"touch_time"`
	ShotDist        float32 `parquet:"shot_dist" json:"shot_dist"`
	PtsType         int32   `parquet:"pts_type" json:"pts_type"`
	Made            bool    `parquet:"made" json:"made"`
	ClosestDefender string  `parquet:"closest_defender,dict" json:"closest_defender"`
	CloseDefDist    float32 `parquet:"close_def_dist" json:"close_def_dist"`
	PlayerName      string  `parquet:"player_name,dict" json:"player_name"`
	PlayerID        int64   `parquet:"player_id" json:"player_id"`
}

// Numeric column names accepted by Column.
const (
	ColShotNumber   = "SHOT_NUMBER"
	ColPeriod       = "PERIOD"
	ColShotClock    = "SHOT_CLOCK"
	ColDribbles     = "DRIBBLES"
	ColTouchTime    = "TOUCH_TIME"
	ColShotDist     = "SHOT_DIST"
	ColPtsType      = "PTS_TYPE"
	ColCloseDefDist = "CLOSE_DEF_DIST"
)

// NumericColumns lists every column Column can resolve.
var NumericColumns = []string{
	ColShotNumber, ColPeriod, ColShotClock, ColDribbles,
	ColTouchTime, ColShotDist, ColPtsType, ColCloseDefDist,
}

// Column returns a numeric attribute by its shot log column name.
func (s Shot) Column(name string) (float64, bool) {
	switch strings.ToUpper(name) {
	case ColShotNumber:
		return float64(s.ShotNumber), true
	case ColPeriod:
		return float64(s.Period), true
	case ColShotClock:
		return float64(s.ShotClock), true
	case ColDribbles:
		return float64(s.Dribbles), true
	case ColTouchTime:
		return float64(s.TouchTime), true
	case ColShotDist:
		return float64(s.ShotDist), true
	case ColPtsType:
		return float64(s.PtsType), true
	case ColCloseDefDist:
		return float64(s.CloseDefDist), true
	}
	return 0, false
}

// Source streams shots to fn until the source is exhausted, fn returns an
// error or ctx is done.
type Source interface {
	Each(ctx context.Context, fn func(Shot) error) error
}

// SliceSource serves shots already held in memory.
type SliceSource []Shot

func (s SliceSource) Each(ctx context.Context, fn func(Shot) error) error {
	for _, shot := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(shot); err != nil {
			return err
		}
	}
	return nil
}

// PlayerFilter passes through only shots taken by Player.
type PlayerFilter struct {
	Source Source
	Player string
}

func (f PlayerFilter) Each(ctx context.Context, fn func(Shot) error) error {
	want := strings.TrimSpace(f.Player)
	return f.Source.Each(ctx, func(s Shot) error {
		if strings.TrimSpace(s.PlayerName) != want {
			return nil
		}
		return fn(s)
	})
}

// Collect drains src into memory.
func Collect(ctx context.Context, src Source) ([]Shot, error) {
	var out []Shot
	err := src.Each(ctx, func(s Shot) error {
		out = append(out, s)
		return nil
	})
	return out, err
}

// Partition splits shots into n interleaved in-memory sources.
func Partition(shots []Shot, n int) []Source {
	if n < 1 {
		n = 1
	}
	if n > len(shots) && len(shots) > 0 {
		n = len(shots)
	}
	parts := make([]SliceSource, n)
	for i, s := range shots {
		parts[i%n] = append(parts[i%n], s)
	}
	out := make([]Source, n)
	for i := range parts {
		out[i] = parts[i]
	}
	return out
}
