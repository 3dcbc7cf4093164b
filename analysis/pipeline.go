// Package analysis runs shot records through a taxonomy-shaped decision tree
// and reports the best and worst performing paths.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brensch/shottree/decisiontree"
	"github.com/brensch/shottree/shotlog"
	"github.com/brensch/shottree/taxonomy"
)

var ErrNoSubject = errors.New("analysis: subject is required")

// Result is the outcome of one run for one subject.
type Result struct {
	RunID        uuid.UUID
	Subject      string
	Tree         *decisiontree.Tree
	Best         decisiontree.PathRatio
	Worst        decisiontree.PathRatio
	Ingested     int
	Dropped      int
	Unclassified int
	Elapsed      time.Duration
}

// Pipeline wires a taxonomy to a shot source. Logger defaults to
// slog.Default() and Metrics may be nil.
type Pipeline struct {
	Taxonomy *taxonomy.Taxonomy
	Logger   *slog.Logger
	Metrics  *Metrics
}

type tally struct {
	ingested     int
	dropped      int
	unclassified int
}

func (t *tally) add(o tally) {
	t.ingested += o.ingested
	t.dropped += o.dropped
	t.unclassified += o.unclassified
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) taxonomy() *taxonomy.Taxonomy {
	if p.Taxonomy != nil {
		return p.Taxonomy
	}
	return taxonomy.Default()
}

// Run ingests every shot src yields for subject into a fresh tree. A shot the
// taxonomy cannot classify, or that matches no path, is dropped and counted.
// Any other ingest error aborts the run.
func (p *Pipeline) Run(ctx context.Context, subject string, src shotlog.Source) (*Result, error) {
	if subject == "" {
		return nil, ErrNoSubject
	}
	start := time.Now()
	tax := p.taxonomy()

	tree, err := tax.Build(subject)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	counts, err := p.ingest(ctx, tax, tree, subject, src)
	if err != nil {
		return nil, err
	}
	return p.finish(subject, tree, counts, start)
}

// RunPartitioned ingests each partition into its own tree concurrently and
// merges the trees once all partitions finish. Counts match Run over the
// concatenated partitions.
func (p *Pipeline) RunPartitioned(ctx context.Context, subject string, parts []shotlog.Source) (*Result, error) {
	if subject == "" {
		return nil, ErrNoSubject
	}
	if len(parts) == 0 {
		return p.Run(ctx, subject, shotlog.SliceSource(nil))
	}
	start := time.Now()
	tax := p.taxonomy()

	trees := make([]*decisiontree.Tree, len(parts))
	counts := make([]tally, len(parts))
	for i := range parts {
		tree, err := tax.Build(subject)
		if err != nil {
			return nil, fmt.Errorf("build tree: %w", err)
		}
		trees[i] = tree
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			c, err := p.ingest(gctx, tax, trees[i], subject, part)
			if err != nil {
				return fmt.Errorf("partition %d: %w", i, err)
			}
			counts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total tally
	total.add(counts[0])
	for i := 1; i < len(trees); i++ {
		if err := decisiontree.Merge(trees[0], trees[i]); err != nil {
			return nil, fmt.Errorf("merge partition %d: %w", i, err)
		}
		total.add(counts[i])
	}
	return p.finish(subject, trees[0], total, start)
}

func (p *Pipeline) ingest(ctx context.Context, tax *taxonomy.Taxonomy, tree *decisiontree.Tree, subject string, src shotlog.Source) (tally, error) {
	var c tally
	log := p.logger()
	err := shotlog.PlayerFilter{Source: src, Player: subject}.Each(ctx, func(s shotlog.Shot) error {
		seq, err := tax.Extract(s)
		if errors.Is(err, taxonomy.ErrUnclassified) {
			c.unclassified++
			p.Metrics.dropped(DropUnclassified)
			log.Debug("shot unclassified", "game", s.GameID, "shot", s.ShotNumber)
			return nil
		}
		if err != nil {
			return err
		}

		ok, err := tree.Ingest(seq)
		if err != nil {
			return fmt.Errorf("ingest game %s shot %d: %w", s.GameID, s.ShotNumber, err)
		}
		if !ok {
			c.dropped++
			p.Metrics.dropped(DropUnmatched)
			return nil
		}
		c.ingested++
		p.Metrics.ingested()
		return nil
	})
	return c, err
}

func (p *Pipeline) finish(subject string, tree *decisiontree.Tree, c tally, start time.Time) (*Result, error) {
	best, err := tree.BestRatioPath()
	if err != nil {
		return nil, fmt.Errorf("best path: %w", err)
	}
	worst, err := tree.WorstRatioPath()
	if err != nil {
		return nil, fmt.Errorf("worst path: %w", err)
	}

	elapsed := time.Since(start)
	p.Metrics.observe(elapsed.Seconds())

	res := &Result{
		RunID:        uuid.New(),
		Subject:      subject,
		Tree:         tree,
		Best:         best,
		Worst:        worst,
		Ingested:     c.ingested,
		Dropped:      c.dropped,
		Unclassified: c.unclassified,
		Elapsed:      elapsed,
	}
	p.logger().Info("run complete",
		"run_id", res.RunID.String(),
		"subject", subject,
		"ingested", res.Ingested,
		"dropped", res.Dropped,
		"unclassified", res.Unclassified,
		"elapsed", elapsed,
	)
	return res, nil
}
