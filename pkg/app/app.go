// Package app builds every table of chainview over one set of stores.
package app

import (
	"fmt"
	"io"
	"time"

	"chainview/pkg/backend"
	"chainview/pkg/models"
	"chainview/pkg/mutation"
	"chainview/pkg/tableview"
	"chainview/pkg/viewstate"

	"github.com/charmbracelet/log"
)

// Views and their facets.
const (
	ViewNames    = "names"
	ViewMonitors = "monitors"
	ViewAbis     = "abis"
	ViewExports  = "exports"
	ViewChunks   = "chunks"
	ViewGallery  = "gallery"

	TabTransactions = "transactions"
	TabBalances     = "balances"
	TabIndex        = "index"
	TabStats        = "stats"
)

// GalleryPageSize is large enough to show every tag group at once.
const GalleryPageSize = 200

var (
	NameFacets   = []string{backend.FacetAll, backend.FacetCustom, backend.FacetDeleted}
	ExportFacets = []string{TabTransactions, TabBalances}
	ChunkFacets  = []string{TabIndex, TabStats}
)

// Sources are the resources behind the tables. A nil source leaves its
// table without a fetch function.
type Sources struct {
	Names          backend.Resource[models.Name]
	Monitors       backend.Resource[models.Monitor]
	Abis           backend.Resource[models.Abi]
	ExportTxs      backend.Resource[models.ExportTx]
	ExportBalances backend.Resource[models.ExportBalance]
	Chunks         backend.Resource[models.ChunkRecord]
	ChunkStats     backend.Resource[models.ChunkStats]
}

// DemoSources serves every table from the in-memory demo data.
func DemoSources(d *backend.Demo) Sources {
	return Sources{
		Names:          d.Names,
		Monitors:       d.Monitors,
		Abis:           d.Abis,
		ExportTxs:      d.ExportTxs,
		ExportBalances: d.ExportBalances,
		Chunks:         d.Chunks,
		ChunkStats:     d.ChunkStats,
	}
}

// RemoteSources serves every table from the API behind c.
func RemoteSources(c *backend.Client) (Sources, error) {
	var (
		src  Sources
		errs []error
	)
	bind := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error
	src.Names, err = endpoint[models.Name](c, backend.ResNames, "")
	bind(err)
	src.Monitors, err = endpoint[models.Monitor](c, backend.ResMonitors, "")
	bind(err)
	src.Abis, err = endpoint[models.Abi](c, backend.ResAbis, "")
	bind(err)
	src.ExportTxs, err = endpoint[models.ExportTx](c, backend.ResExports, TabTransactions)
	bind(err)
	src.ExportBalances, err = endpoint[models.ExportBalance](c, backend.ResExports, TabBalances)
	bind(err)
	src.Chunks, err = endpoint[models.ChunkRecord](c, backend.ResChunks, TabIndex)
	bind(err)
	src.ChunkStats, err = endpoint[models.ChunkStats](c, backend.ResChunks, TabStats)
	bind(err)
	if len(errs) > 0 {
		return Sources{}, fmt.Errorf("bind endpoints: %w", errs[0])
	}
	return src, nil
}

func endpoint[T any](c *backend.Client, name, facet string) (backend.Resource[T], error) {
	e, err := backend.NewEndpoint[T](c, name, facet)
	if err != nil {
		return nil, err
	}
	return e, nil
}

type Options struct {
	PageSize    int
	Grace       time.Duration
	SettleDelay time.Duration
	Status      mutation.StatusEmitter
	Prefs       tableview.Preferences
	Logger      *log.Logger
}

// App holds one controller per view and facet.
type App struct {
	Stores     *tableview.Stores
	Processing *mutation.ProcessingSet

	Names          map[string]*tableview.Controller[models.Name]
	Gallery        *tableview.Controller[models.Name]
	Monitors       *tableview.Controller[models.Monitor]
	Abis           *tableview.Controller[models.Abi]
	ExportTxs      *tableview.Controller[models.ExportTx]
	ExportBalances *tableview.Controller[models.ExportBalance]
	Chunks         *tableview.Controller[models.ChunkRecord]
	ChunkStats     *tableview.Controller[models.ChunkStats]

	summaries map[string]tableview.Summarizer
	closers   []func()
}

func New(src Sources, opts Options) *App {
	if opts.PageSize <= 0 {
		opts.PageSize = viewstate.DefaultPageSize
	}
	if opts.Grace <= 0 {
		opts.Grace = mutation.DefaultGrace
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	a := &App{
		Stores:     tableview.NewStores(opts.PageSize),
		Processing: mutation.NewProcessingSet(opts.Grace),
		Names:      make(map[string]*tableview.Controller[models.Name]),
		summaries:  make(map[string]tableview.Summarizer),
	}

	for _, f := range NameFacets {
		a.Names[f] = build(a, opts, viewstate.NewKey(ViewNames, f), src.Names, models.NameKey)
	}
	galleryKey := viewstate.NewKey(ViewGallery, "")
	a.Stores.Pagination.ChangePageSize(galleryKey, GalleryPageSize)
	a.Gallery = build(a, opts, galleryKey, src.Names, models.NameKey)
	a.Monitors = build(a, opts, viewstate.NewKey(ViewMonitors, ""), src.Monitors, models.MonitorKey)
	a.Abis = build(a, opts, viewstate.NewKey(ViewAbis, ""), src.Abis, models.AbiKey)
	a.ExportTxs = build(a, opts, viewstate.NewKey(ViewExports, TabTransactions), src.ExportTxs, models.ExportTxKey)
	a.ExportBalances = build(a, opts, viewstate.NewKey(ViewExports, TabBalances), src.ExportBalances, models.ExportBalanceKey)
	a.Chunks = build(a, opts, viewstate.NewKey(ViewChunks, TabIndex), src.Chunks, models.ChunkRecordKey)
	a.ChunkStats = build(a, opts, viewstate.NewKey(ViewChunks, TabStats), src.ChunkStats, models.ChunkStatsKey)
	return a
}

func build[T any](a *App, opts Options, key viewstate.Key, res backend.Resource[T], keyOf mutation.KeyFunc[T]) *tableview.Controller[T] {
	cfg := tableview.Config[T]{
		Key:         key,
		Stores:      a.Stores,
		KeyOf:       keyOf,
		Status:      opts.Status,
		Processing:  a.Processing,
		Prefs:       opts.Prefs,
		Logger:      opts.Logger,
		SettleDelay: opts.SettleDelay,
	}
	if res != nil {
		cfg.Fetch = res.Fetch
		cfg.Mutate = res.Mutate
		cfg.Clean = res.Clean
	}
	c := tableview.New(cfg)
	a.summaries[key.String()] = c
	a.closers = append(a.closers, c.Close)
	return c
}

// Summarizers lists every table by its key.
func (a *App) Summarizers() map[string]tableview.Summarizer {
	out := make(map[string]tableview.Summarizer, len(a.summaries))
	for k, v := range a.summaries {
		out[k] = v
	}
	return out
}

// Close detaches every controller.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
