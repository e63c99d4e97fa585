package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/woozymasta/lakemap/internal/lake"
	"github.com/woozymasta/lakemap/internal/metrics"
	"github.com/woozymasta/lakemap/internal/source"

	"github.com/rs/zerolog/log"
)

// Catalog loads the dataset once and serves filtered views of it.
type Catalog struct {
	metrics *metrics.Metrics

	mu    sync.RWMutex
	state State

	once sync.Once
	done chan struct{}
}

// New returns a catalog in the NotLoaded state. m may be nil.
func New(m *metrics.Metrics) *Catalog {
	return &Catalog{
		metrics: m,
		state:   NotLoaded{},
		done:    make(chan struct{}),
	}
}

// Load reads and validates the dataset from src. Only the first call does
// any work; later calls wait for it and return the resulting state.
//
// If ctx is cancelled before the read finishes, the result is discarded and
// the catalog stays NotLoaded. A deadline expiring is a LoadError.
func (c *Catalog) Load(ctx context.Context, src source.Source) State {
	c.once.Do(func() {
		defer close(c.done)

		next := fetch(ctx, src)
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Debug().
				Str("source", src.String()).
				Msg("Dataset load cancelled, result discarded")
			return
		}

		c.set(next)
		c.report(src, next)
	})

	<-c.done
	return c.State()
}

// Done is closed once the load attempt has finished or was cancelled.
func (c *Catalog) Done() <-chan struct{} {
	return c.done
}

// State returns the current load state.
func (c *Catalog) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Lakes returns the full loaded lake list, empty unless loaded.
func (c *Catalog) Lakes() []lake.Lake {
	return Lakes(c.State())
}

// Filtered derives the lakes visible for query from the current state.
func (c *Catalog) Filtered(query string) []lake.Lake {
	return lake.Filter(c.Lakes(), query)
}

func (c *Catalog) set(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s
}

func fetch(ctx context.Context, src source.Source) State {
	rc, err := src.Open(ctx)
	if err != nil {
		return LoadError{Reason: fmt.Errorf("open %s: %w", src, err)}
	}
	defer func() { _ = rc.Close() }()

	ds, err := lake.Decode(rc)
	if err != nil {
		return LoadError{Reason: fmt.Errorf("read %s: %w", src, err)}
	}

	return Loaded{Dataset: ds}
}

func (c *Catalog) report(src source.Source, s State) {
	switch st := s.(type) {
	case LoadError:
		log.Error().
			Err(st.Reason).
			Str("source", src.String()).
			Msg("Failed to load lake dataset")

		if c.metrics != nil {
			c.metrics.DatasetState.Set(metrics.StateError)
			c.metrics.LakesLoaded.Set(0)
		}

	case Loaded:
		for _, is := range st.Dataset.Issues {
			ev := log.Warn()
			if !is.Reason.Skips() {
				ev = log.Debug()
			}
			ev.Int("index", is.Index).
				Str("id", string(is.ID)).
				Str("reason", string(is.Reason)).
				Str("detail", is.Detail).
				Msg("Lake record flagged during validation")

			if c.metrics != nil && is.Reason.Skips() {
				c.metrics.RecordsSkipped.WithLabelValues(string(is.Reason)).Inc()
			}
		}

		log.Info().
			Str("source", src.String()).
			Int("lakes", len(st.Dataset.Lakes)).
			Int("skipped", st.Dataset.Skipped()).
			Msg("Lake dataset loaded")

		if c.metrics != nil {
			c.metrics.DatasetState.Set(metrics.StateLoaded)
			c.metrics.LakesLoaded.Set(float64(len(st.Dataset.Lakes)))
		}
	}
}
