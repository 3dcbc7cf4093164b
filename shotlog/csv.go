package shotlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var ErrMissingColumn = errors.New("shotlog: required column missing")

// CSVSource reads a shot log export with a header row.
//
// Rows with unparsable numeric fields are skipped and logged; the rest of the
// file is still read.
type CSVSource struct {
	Path   string
	Logger *slog.Logger

	skipped int
}

// Skipped reports how many rows the last Each call could not parse.
func (c *CSVSource) Skipped() int { return c.skipped }

func (c *CSVSource) Each(ctx context.Context, fn func(Shot) error) error {
	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("open shot log: %w", err)
	}
	defer f.Close()

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c.skipped = 0
	return readCSV(ctx, f, logger.With("path", c.Path), fn, &c.skipped)
}

// ReadCSV streams shots from r, which must start with a header row.
func ReadCSV(ctx context.Context, r io.Reader, logger *slog.Logger, fn func(Shot) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	var skipped int
	return readCSV(ctx, r, logger, fn, &skipped)
}

func readCSV(ctx context.Context, r io.Reader, logger *slog.Logger, fn func(Shot) error, skipped *int) error {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols, err := indexHeader(header)
	if err != nil {
		return err
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				*skipped++
				logger.Warn("skipping malformed row", "line", line, "err", err)
				continue
			}
			return fmt.Errorf("read row %d: %w", line, err)
		}

		shot, err := cols.parse(record)
		if err != nil {
			*skipped++
			logger.Warn("skipping row", "line", line, "err", err)
			continue
		}
		if err := fn(shot); err != nil {
			return err
		}
	}
}

type columnIndex map[string]int

func indexHeader(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["PLAYER_NAME"]; !ok {
		return nil, fmt.Errorf("%w: player_name", ErrMissingColumn)
	}
	_, hasResult := cols["SHOT_RESULT"]
	_, hasFGM := cols["FGM"]
	if !hasResult && !hasFGM {
		return nil, fmt.Errorf("%w: SHOT_RESULT or FGM", ErrMissingColumn)
	}
	return cols, nil
}

func (c columnIndex) str(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (c columnIndex) float(record []string, name string) (float32, error) {
	s := c.str(record, name)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return float32(f), nil
}

func (c columnIndex) integer(record []string, name string, bitSize int) (int64, error) {
	s := c.str(record, name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (c columnIndex) parse(record []string) (Shot, error) {
	s := Shot{
		GameID:          c.str(record, "GAME_ID"),
		Matchup:         c.str(record, "MATCHUP"),
		Location:        c.str(record, "LOCATION"),
		GameClock:       c.str(record, "GAME_CLOCK"),
		ClosestDefender: c.str(record, "CLOSEST_DEFENDER"),
		PlayerName:      c.str(record, "PLAYER_NAME"),
	}
	if s.PlayerName == "" {
		return Shot{}, errors.New("empty player_name")
	}

	var errs []error
	collectInt := func(dst *int32, name string) {
		n, err := c.integer(record, name, 32)
		errs = append(errs, err)
		*dst = int32(n)
	}
	collectFloat := func(dst *float32, name string) {
		f, err := c.float(record, name)
		errs = append(errs, err)
		*dst = f
	}
	collectInt(&s.ShotNumber, ColShotNumber)
	collectInt(&s.Period, ColPeriod)
	collectInt(&s.Dribbles, ColDribbles)
	collectInt(&s.PtsType, ColPtsType)
	collectFloat(&s.ShotClock, ColShotClock)
	collectFloat(&s.TouchTime, ColTouchTime)
	collectFloat(&s.ShotDist, ColShotDist)
	collectFloat(&s.CloseDefDist, ColCloseDefDist)

	id, err := c.integer(record, "PLAYER_ID", 64)
	errs = append(errs, err)
	s.PlayerID = id

	if err := errors.Join(errs...); err != nil {
		return Shot{}, err
	}

	made, err := c.made(record)
	if err != nil {
		return Shot{}, err
	}
	s.Made = made
	return s, nil
}

func (c columnIndex) made(record []string) (bool, error) {
	switch strings.ToLower(c.str(record, "SHOT_RESULT")) {
	case "made":
		return true, nil
	case "missed":
		return false, nil
	}
	switch c.str(record, "FGM") {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, errors.New("no shot result")
}

// RowParser converts string rows laid out by a shot log header into shots.
// It backs sources other than CSV that carry the same columns.
type RowParser struct {
	cols columnIndex
}

func NewRowParser(header []string) (*RowParser, error) {
	cols, err := indexHeader(header)
	if err != nil {
		return nil, err
	}
	return &RowParser{cols: cols}, nil
}

func (p *RowParser) Parse(record []string) (Shot, error) {
	return p.cols.parse(record)
}
