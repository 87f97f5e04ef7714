package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/evaluate"
	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/llm"
	"github.com/abhisek/mathlearn/internal/logging"
	"github.com/abhisek/mathlearn/internal/session"
	"github.com/abhisek/mathlearn/internal/store"
)

// deps bundles everything a session-running command needs. close releases
// the backend and any cache connection.
type deps struct {
	backend   store.Backend
	graph     *curriculum.Graph
	scheduler *session.Scheduler
	closers   []func() error
}

func (d *deps) close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	return errors.Join(errs...)
}

// openBackend opens the configured snapshot and event store.
func openBackend(ctx context.Context) (store.Backend, error) {
	switch cfg.Database.Driver {
	case "postgres":
		s, err := store.OpenPostgres(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	default:
		dbPath, err := resolveDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return s, nil
	}
}

// loadGraph returns the curriculum from --curriculum or the built-in one.
func loadGraph() (*curriculum.Graph, error) {
	if cfg.CurriculumPath != "" {
		return curriculum.LoadFile(cfg.CurriculumPath)
	}
	return curriculum.Default()
}

func buildEvaluator() (evaluate.Evaluator, error) {
	ec := cfg.Evaluator
	if ec.Kind == "fixture" {
		return evaluate.LoadFixture(ec.FixturePath)
	}

	seed := uint64(ec.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rc := evaluate.DefaultRandomConfig()
	rc.PassProbability = ec.PassProbability
	rc.OptimalProbability = ec.OptimalProbability
	return evaluate.NewRandom(seed, rc)
}

// buildSequence returns the shared Redis sequence when a cache URL is
// configured, else nil so factories fall back to an in-process counter.
func buildSequence(ctx context.Context, d *deps) (content.Sequence, error) {
	if cfg.Cache.URL == "" {
		return nil, nil
	}
	seq, err := content.NewRedisSequence(ctx, cfg.Cache.URL, cfg.Cache.Key)
	if err != nil {
		return nil, fmt.Errorf("connect item sequence: %w", err)
	}
	d.closers = append(d.closers, seq.Close)
	return seq, nil
}

func buildFactory(ctx context.Context, d *deps) (content.Factory, error) {
	seq, err := buildSequence(ctx, d)
	if err != nil {
		return nil, err
	}
	if cfg.Content.Factory == "llm" {
		var events store.EventRepo
		if cfg.Session.RecordEvents {
			events = d.backend.EventRepo()
		}
		provider, err := llm.NewProvider(ctx, llm.FromConfig(cfg.LLM), events)
		if err != nil {
			return nil, fmt.Errorf("LLM provider: %w", err)
		}
		return content.NewLLMFactory(provider, d.graph, seq, content.DefaultLLMConfig()), nil
	}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	if cfg.Evaluator.Seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(cfg.Evaluator.Seed), 1))
	}
	return content.NewTemplateFactory(content.DefaultCatalogue(), seq, rng), nil
}

// buildDeps opens the backend and assembles a scheduler over it.
func buildDeps(ctx context.Context, opts ...session.Option) (*deps, error) {
	d := &deps{}

	graph, err := loadGraph()
	if err != nil {
		return nil, err
	}
	d.graph = graph

	backend, err := openBackend(ctx)
	if err != nil {
		return nil, err
	}
	d.backend = backend
	d.closers = append(d.closers, backend.Close)

	factory, err := buildFactory(ctx, d)
	if err != nil {
		d.close()
		return nil, err
	}
	evaluator, err := buildEvaluator()
	if err != nil {
		d.close()
		return nil, err
	}

	var events store.EventRepo
	if cfg.Session.RecordEvents {
		events = backend.EventRepo()
	}
	base := []session.Option{
		session.WithStore(backend.SnapshotRepo(), events),
		session.WithRetention(cfg.Database.KeepSnapshots),
		session.WithLogger(logging.New("session")),
	}
	d.scheduler = session.New(graph, factory, evaluator, append(base, opts...)...)
	return d, nil
}

// loadLearner restores a learner or fails when it has no snapshot.
func loadLearner(ctx context.Context, snaps store.SnapshotRepo, id string) (*learner.State, error) {
	snap, err := snaps.Latest(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("learner %q has no saved state", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load learner %s: %w", id, err)
	}
	return learner.FromSnapshot(&snap.Data)
}
