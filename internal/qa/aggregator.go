package qa

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/contract-extractor/internal/chunk"
)

// Config controls how a document is tiled and how many chunk calls run at once.
type Config struct {
	MaxWords     int           // words per chunk; <=0 -> chunk.DefaultMaxWords
	Concurrency  int           // parallel chunk calls; <=1 -> sequential
	ChunkTimeout time.Duration // per chunk call; 0 -> no limit beyond ctx
}

// Aggregator asks one question against every chunk of a document and keeps the
// best-scoring answer.
type Aggregator struct {
	answerer Answerer
	cfg      Config
	logger   *slog.Logger
}

func NewAggregator(a Answerer, cfg Config, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if a == nil {
		a = None{}
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = chunk.DefaultMaxWords
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Aggregator{answerer: a, cfg: cfg, logger: logger}
}

type chunkResult struct {
	cand Candidate
	ok   bool
}

// Ask returns the candidate with the strictly highest positive score across all chunks.
// Ties keep the earliest chunk and a score of 0 never wins. Failed chunk calls are logged
// and skipped, so Ask never fails: it reports absence instead.
func (g *Aggregator) Ask(ctx context.Context, fullText, question string) (Candidate, bool) {
	if strings.TrimSpace(fullText) == "" {
		return Candidate{}, false
	}
	chunks := chunk.All(fullText, g.cfg.MaxWords)
	results := make([]chunkResult, len(chunks))
	start := time.Now()

	var eg errgroup.Group
	eg.SetLimit(g.cfg.Concurrency)
	for i, c := range chunks {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			cctx, cancel := g.chunkContext(ctx)
			defer cancel()

			cand, ok, err := g.answerer.Answer(cctx, question, c.Text)
			if err != nil {
				g.logger.Warn("qa.chunk.failed",
					"chunk", i,
					"word_start", c.WordStart,
					"word_end", c.WordEnd,
					"error", err,
				)
				return nil
			}
			results[i] = chunkResult{cand: cand, ok: ok}
			return nil
		})
	}
	_ = eg.Wait()

	best, found, winner := Candidate{}, false, -1
	bestScore := 0.0
	for i, r := range results {
		if r.ok && r.cand.Score > bestScore {
			best, found, winner = r.cand, true, i
			bestScore = r.cand.Score
		}
	}
	best.Text = strings.TrimSpace(best.Text)

	g.logger.Debug("qa.ask.done",
		"chunks", len(chunks),
		"found", found,
		"winner", winner,
		"score", bestScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return best, found
}

func (g *Aggregator) chunkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.ChunkTimeout > 0 {
		return context.WithTimeout(ctx, g.cfg.ChunkTimeout)
	}
	return context.WithCancel(ctx)
}
