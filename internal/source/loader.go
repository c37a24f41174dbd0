package source

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/provq/internal/provenance"
)

// Snapshot is one loaded dataset. It is immutable and safe to share.
type Snapshot struct {
	Payload *provenance.Payload

	// Generation increases by one with every successful load.
	Generation uint64
	LoadedAt   time.Time

	byDescriptor map[string][]provenance.MappingID
}

// MappingsFor returns the ids of the mappings whose source or target
// descriptor is exactly descriptor, in payload order.
func (s *Snapshot) MappingsFor(descriptor string) []provenance.MappingID {
	return s.byDescriptor[descriptor]
}

func newSnapshot(p *provenance.Payload, generation uint64, at time.Time) *Snapshot {
	index := make(map[string][]provenance.MappingID)
	for i := range p.Mappings {
		m := &p.Mappings[i]
		id := provenance.MappingID(i)
		src := p.Dict.Descriptor(m.Source)
		tgt := p.Dict.Descriptor(m.Target)
		if src != "" {
			index[src] = append(index[src], id)
		}
		if tgt != "" && tgt != src {
			index[tgt] = append(index[tgt], id)
		}
	}
	return &Snapshot{
		Payload:      p,
		Generation:   generation,
		LoadedAt:     at,
		byDescriptor: index,
	}
}

const flightKey = "dataset"

// Loader holds the process-wide dataset.
//
// At most one load runs at a time: callers arriving while a load is in
// flight wait for that load instead of starting another. A failed load
// stores nothing, so the next call loads again. Queries never lock; they
// read the current *Snapshot through an atomic pointer.
//
// Thread-safety: all methods are safe for concurrent use.
type Loader struct {
	src    Source
	logger *slog.Logger
	now    func() time.Time

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	loads      atomic.Int64
	flight     singleflight.Group
}

// NewLoader creates a loader over src. A nil logger discards output.
func NewLoader(src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		src:    src,
		logger: logger.With("source", src.Name()),
		now:    time.Now,
	}
}

// Get returns the loaded snapshot, loading it first if necessary.
//
// Cancelling ctx abandons only this caller's wait; a shared load keeps
// running for the other callers.
func (l *Loader) Get(ctx context.Context) (*Snapshot, error) {
	if s := l.current.Load(); s != nil {
		return s, nil
	}
	return l.load(ctx, false)
}

// Reload loads the dataset again and swaps it in. Callers holding the old
// snapshot keep using it unchanged. If the load fails the previous snapshot
// stays current.
func (l *Loader) Reload(ctx context.Context) (*Snapshot, error) {
	return l.load(ctx, true)
}

// Current returns the loaded snapshot without loading.
func (l *Loader) Current() (*Snapshot, bool) {
	s := l.current.Load()
	return s, s != nil
}

// Reset drops the loaded snapshot. The next Get loads again.
func (l *Loader) Reset() {
	l.current.Store(nil)
}

// Loads returns how many loads have been started.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}

func (l *Loader) load(ctx context.Context, force bool) (*Snapshot, error) {
	ch := l.flight.DoChan(flightKey, func() (any, error) {
		if !force {
			if s := l.current.Load(); s != nil {
				return s, nil
			}
		}
		return l.doLoad(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) doLoad(ctx context.Context) (*Snapshot, error) {
	l.loads.Add(1)
	start := l.now()
	l.logger.Debug("loading dataset")

	p, err := l.src.Load(ctx)
	if err != nil {
		l.logger.Error("dataset load failed", "error", err, "duration", l.now().Sub(start))
		return nil, &LoadError{Source: l.src.Name(), Err: err}
	}

	s := newSnapshot(p, l.generation.Add(1), l.now())
	l.current.Store(s)

	l.logger.Info("dataset loaded",
		"generation", s.Generation,
		"mappings", len(p.Mappings),
		"descriptors", len(p.Dict.Descriptors),
		"duration", s.LoadedAt.Sub(start),
	)
	return s, nil
}
