package tui

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"chainview/pkg/app"
	"chainview/pkg/backend"
	"chainview/pkg/models"
	"chainview/pkg/tableview"
	"chainview/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
)

// view is one top-level screen with its facets.
type view struct {
	name   string
	title  string
	facets []string
	panes  map[string]pane
	tab    string
}

func (v *view) active() pane { return v.panes[v.tab] }

func single(name, title string, p pane) *view {
	return &view{name: name, title: title, facets: []string{""}, panes: map[string]pane{"": p}}
}

func faceted(name, title string, facets []string, panes map[string]pane) *view {
	return &view{name: name, title: title, facets: facets, panes: panes, tab: facets[0]}
}

func buildViews(a *app.App, rpcURLs []string) []*view {
	names := make(map[string]pane, len(a.Names))
	for facet, ctrl := range a.Names {
		names[facet] = nameTable(ctrl, rpcURLs)
	}
	return []*view{
		faceted(app.ViewNames, "Names", app.NameFacets, names),
		single(app.ViewMonitors, "Monitors", monitorTable(a.Monitors, rpcURLs)),
		single(app.ViewAbis, "Abis", abiTable(a.Abis)),
		faceted(app.ViewExports, "Exports", app.ExportFacets, map[string]pane{
			app.TabTransactions: exportTxTable(a.ExportTxs),
			app.TabBalances:     exportBalanceTable(a.ExportBalances),
		}),
		faceted(app.ViewChunks, "Chunks", app.ChunkFacets, map[string]pane{
			app.TabIndex: chunkTable(a.Chunks),
			app.TabStats: chunkStatsTable(a.ChunkStats),
		}),
		single(app.ViewGallery, "Gallery", newGallery(a.Gallery)),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func itoa[N int | int64](n N) string { return utils.AddCommas(strconv.FormatInt(int64(n), 10)) }

func nameTable(ctrl *tableview.Controller[models.Name], rpcURLs []string) *table[models.Name] {
	t := &table[models.Name]{
		ctrl: ctrl,
		cols: []column[models.Name]{
			{title: "Address", key: "address", width: 14, cell: func(n models.Name) string { return utils.ShortenAddr(n.Address) }},
			{title: "Name", key: "name", width: 24, cell: func(n models.Name) string { return n.Name }},
			{title: "Tags", key: "tags", width: 22, cell: func(n models.Name) string { return n.Tags }},
			{title: "Source", key: "source", width: 10, cell: func(n models.Name) string { return n.Source }},
			{title: "Symbol", key: "symbol", width: 7, cell: func(n models.Name) string { return n.Symbol }},
			{title: "Custom", key: "isCustom", width: 6, cell: func(n models.Name) string { return yesNo(n.IsCustom) }},
			{title: "Contract", key: "isContract", width: 8, cell: func(n models.Name) string { return yesNo(n.IsContract) }},
		},
		sortCol:  1,
		address:  func(n models.Name) string { return n.Address },
		deleted:  func(n models.Name) bool { return n.Deleted },
		flip:     func(n models.Name) models.Name { n.Deleted = !n.Deleted; return n },
		autoname: backend.Autoname,
		onEdit:   func(n models.Name) *entryForm { return newNameForm(ctrl, &n) },
		onNew:    func() *entryForm { return newNameForm(ctrl, nil) },
	}
	return t.openWith(func(ctx context.Context, n models.Name) tea.Cmd {
		return enrichCmd(ctx, rpcURLs, ctrl.Key(), n)
	})
}

func monitorTable(ctrl *tableview.Controller[models.Monitor], rpcURLs []string) *table[models.Monitor] {
	t := &table[models.Monitor]{
		ctrl: ctrl,
		cols: []column[models.Monitor]{
			{title: "Address", key: "address", width: 14, cell: func(m models.Monitor) string { return utils.ShortenAddr(m.Address) }},
			{title: "Name", key: "name", width: 20, cell: func(m models.Monitor) string { return m.Name }},
			{title: "Records", key: "nRecords", width: 9, cell: func(m models.Monitor) string { return itoa(m.NRecords) }},
			{title: "Size", key: "fileSize", width: 10, cell: func(m models.Monitor) string { return utils.FormatBytes(m.FileSize) }},
			{title: "Scanned", key: "lastScanned", width: 12, cell: func(m models.Monitor) string {
				return utils.AddCommas(strconv.FormatUint(m.LastScanned, 10))
			}},
		},
		sortCol:   0,
		address:   func(m models.Monitor) string { return m.Address },
		deleted:   func(m models.Monitor) bool { return m.Deleted },
		flip:      func(m models.Monitor) models.Monitor { m.Deleted = !m.Deleted; return m },
		cleanable: true,
		onNew:     func() *entryForm { return newMonitorForm(ctrl) },
	}
	return t.openWith(func(ctx context.Context, m models.Monitor) tea.Cmd {
		return scanCmd(ctx, rpcURLs, m.Address)
	})
}

func abiTable(ctrl *tableview.Controller[models.Abi]) *table[models.Abi] {
	return &table[models.Abi]{
		ctrl: ctrl,
		cols: []column[models.Abi]{
			{title: "Address", key: "address", width: 14, cell: func(a models.Abi) string { return utils.ShortenAddr(a.Address) }},
			{title: "Name", key: "name", width: 20, cell: func(a models.Abi) string { return a.Name }},
			{title: "Size", key: "fileSize", width: 10, cell: func(a models.Abi) string { return utils.FormatBytes(a.FileSize) }},
			{title: "Funcs", key: "nFunctions", width: 6, cell: func(a models.Abi) string { return itoa(a.NFunctions) }},
			{title: "Events", key: "nEvents", width: 6, cell: func(a models.Abi) string { return itoa(a.NEvents) }},
			{title: "Known", key: "isKnown", width: 5, cell: func(a models.Abi) string { return yesNo(a.IsKnown) }},
			{title: "Empty", key: "isEmpty", width: 5, cell: func(a models.Abi) string { return yesNo(a.IsEmpty) }},
		},
		sortCol:   1,
		address:   func(a models.Abi) string { return a.Address },
		cleanable: true,
	}
}

func weiString(v string) string {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return v
	}
	return utils.FormatEther(n)
}

func exportTxTable(ctrl *tableview.Controller[models.ExportTx]) *table[models.ExportTx] {
	return &table[models.ExportTx]{
		ctrl: ctrl,
		cols: []column[models.ExportTx]{
			{title: "Block", key: "blockNumber", width: 12, cell: func(t models.ExportTx) string {
				return fmt.Sprintf("%d.%d", t.BlockNumber, t.TransactionIndex)
			}},
			{title: "Hash", key: "hash", width: 14, cell: func(t models.ExportTx) string { return utils.ShortenAddr(t.Hash) }},
			{title: "From", key: "from", width: 14, cell: func(t models.ExportTx) string { return utils.ShortenAddr(t.From) }},
			{title: "To", key: "to", width: 14, cell: func(t models.ExportTx) string { return utils.ShortenAddr(t.To) }},
			{title: "Value (ETH)", key: "value", width: 14, cell: func(t models.ExportTx) string { return weiString(t.Value) }},
			{title: "Age", key: "timestamp", width: 5, cell: func(t models.ExportTx) string {
				return utils.FormatAge(time.Unix(t.Timestamp, 0), time.Now())
			}},
		},
		address: func(t models.ExportTx) string { return t.Hash },
	}
}

func exportBalanceTable(ctrl *tableview.Controller[models.ExportBalance]) *table[models.ExportBalance] {
	return &table[models.ExportBalance]{
		ctrl: ctrl,
		cols: []column[models.ExportBalance]{
			{title: "Block", key: "blockNumber", width: 10, cell: func(b models.ExportBalance) string {
				return strconv.FormatUint(b.BlockNumber, 10)
			}},
			{title: "Asset", key: "asset", width: 14, cell: func(b models.ExportBalance) string { return utils.ShortenAddr(b.Asset) }},
			{title: "Symbol", key: "symbol", width: 7, cell: func(b models.ExportBalance) string { return b.Symbol }},
			{title: "Balance", key: "balance", width: 16, cell: func(b models.ExportBalance) string {
				n, ok := new(big.Int).SetString(b.Balance, 10)
				if !ok {
					return b.Balance
				}
				return utils.FormatUnits(n, b.Decimals, 4)
			}},
		},
		address: func(b models.ExportBalance) string { return b.Asset },
	}
}

func chunkTable(ctrl *tableview.Controller[models.ChunkRecord]) *table[models.ChunkRecord] {
	return &table[models.ChunkRecord]{
		ctrl: ctrl,
		cols: []column[models.ChunkRecord]{
			{title: "Range", key: "range", width: 20, cell: func(c models.ChunkRecord) string { return c.Range }},
			{title: "Bloom", key: "bloomHash", width: 14, cell: func(c models.ChunkRecord) string { return utils.ShortenAddr(c.BloomHash) }},
			{title: "Index", key: "indexHash", width: 14, cell: func(c models.ChunkRecord) string { return utils.ShortenAddr(c.IndexHash) }},
			{title: "Bloom Size", key: "bloomSize", width: 10, cell: func(c models.ChunkRecord) string { return utils.FormatBytes(c.BloomSize) }},
			{title: "Index Size", key: "indexSize", width: 10, cell: func(c models.ChunkRecord) string { return utils.FormatBytes(c.IndexSize) }},
		},
		address: func(c models.ChunkRecord) string { return c.IndexHash },
	}
}

func chunkStatsTable(ctrl *tableview.Controller[models.ChunkStats]) *table[models.ChunkStats] {
	return &table[models.ChunkStats]{
		ctrl: ctrl,
		cols: []column[models.ChunkStats]{
			{title: "Range", key: "range", width: 20, cell: func(c models.ChunkStats) string { return c.Range }},
			{title: "Addrs", key: "nAddrs", width: 9, cell: func(c models.ChunkStats) string { return itoa(c.NAddrs) }},
			{title: "Apps", key: "nApps", width: 10, cell: func(c models.ChunkStats) string { return itoa(c.NApps) }},
			{title: "Blocks", key: "nBlocks", width: 8, cell: func(c models.ChunkStats) string { return itoa(c.NBlocks) }},
			{title: "Addr/Blk", key: "addrsPerBlock", width: 8, cell: func(c models.ChunkStats) string {
				return utils.FormatFloat(c.AddrsPerBlock, 2)
			}},
			{title: "App/Addr", key: "appsPerAddr", width: 8, cell: func(c models.ChunkStats) string {
				return utils.FormatFloat(c.AppsPerAddr, 2)
			}},
			{title: "Size", key: "chunkSize", width: 10, cell: func(c models.ChunkStats) string { return utils.FormatBytes(c.ChunkSize) }},
		},
		chart: chunkSizeChart,
	}
}

func chunkSizeChart(items []models.ChunkStats, width int) string {
	series := chunkSizeSeries(items)
	if len(series) < 2 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(max(width-12, 10)),
		asciigraph.Caption("Chunk size (MiB)"),
	)
}
