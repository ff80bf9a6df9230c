package nchorder

import (
	"errors"
	"sync"

	"github.com/nchorder/nchorder/internal/chord"
	"github.com/nchorder/nchorder/internal/flashstore"
)

// layoutStore ties the mapping tables to persistent storage. It is the
// LayoutSink the control protocol handler drives: commits parse and
// activate an uploaded blob, saves persist it, restores re-activate
// the persisted copy.
type layoutStore struct {
	mu     sync.Mutex
	tables *chord.Tables
	store  *flashstore.Store
}

func newLayoutStore(tables *chord.Tables, store *flashstore.Store) *layoutStore {
	return &layoutStore{tables: tables, store: store}
}

func (ls *layoutStore) CommitLayout(data []byte) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.tables.LoadBinary(data); err != nil {
		metricLayoutLoads.WithLabelValues("rejected").Inc()
		return err
	}
	metricLayoutLoads.WithLabelValues("ok").Inc()
	metricEntriesSkipped.Set(float64(ls.tables.SkippedCount()))
	storageLogger.Info().
		Int("keys", ls.tables.KeyCount()).
		Int("mouse", ls.tables.MouseCount()).
		Int("consumer", ls.tables.ConsumerCount()).
		Int("multichar", ls.tables.MultiCharCount()).
		Int("skipped", ls.tables.SkippedCount()).
		Msg("layout activated")
	return nil
}

func (ls *layoutStore) SaveLayout(data []byte) error {
	return ls.store.Save(data)
}

func (ls *layoutStore) RestoreLayout() error {
	data, err := ls.store.Load()
	if err != nil {
		return err
	}
	return ls.CommitLayout(data)
}

// bootstrap loads the persisted layout if one exists, otherwise the
// built-in default mappings. A corrupt record degrades to defaults
// rather than refusing to start.
func (ls *layoutStore) bootstrap() {
	data, err := ls.store.Load()
	switch {
	case err == nil:
		if err := ls.tables.LoadBinary(data); err == nil {
			metricLayoutLoads.WithLabelValues("ok").Inc()
			storageLogger.Info().Int("bytes", len(data)).Msg("restored saved layout")
			return
		}
		storageLogger.Warn().Msg("saved layout no longer parses, using defaults")
	case errors.Is(err, flashstore.ErrNoRecord):
		storageLogger.Info().Msg("no saved layout, using defaults")
	default:
		storageLogger.Warn().Err(err).Msg("saved layout unreadable, using defaults")
	}
	ls.tables.LoadDefaults()
	metricLayoutLoads.WithLabelValues("defaults").Inc()
}
