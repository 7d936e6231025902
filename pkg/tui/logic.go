package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"chainview/pkg/models"
	"chainview/pkg/rpc"
	"chainview/pkg/utils"
	"chainview/pkg/viewstate"
	"chainview/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	untagged  = "(untagged)"
	scanDepth = 256
	scanLimit = 25
)

type (
	detailMsg struct {
		title string
		body  string
	}
	scanMsg struct {
		address string
		txs     []models.ExportTx
		failed  []string
		err     error
	}
	enrichedMsg struct {
		key  viewstate.Key
		name models.Name
		err  error
	}
)

type tagGroup struct {
	tag   string
	items []models.Name
}

// groupByTag buckets names by their tags, groups sorted by tag and names
// kept in page order. order maps each position of the flattened grid back
// to the index of the name on the page.
func groupByTag(items []models.Name) ([]tagGroup, []int) {
	byTag := make(map[string][]int)
	for i, n := range items {
		tag := strings.TrimSpace(n.Tags)
		if tag == "" {
			tag = untagged
		}
		byTag[tag] = append(byTag[tag], i)
	}
	tags := make([]string, 0, len(byTag))
	for t := range byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	groups := make([]tagGroup, 0, len(tags))
	order := make([]int, 0, len(items))
	for _, t := range tags {
		g := tagGroup{tag: t}
		for _, idx := range byTag[t] {
			g.items = append(g.items, items[idx])
			order = append(order, idx)
		}
		groups = append(groups, g)
	}
	return groups, order
}

func chunkSizeSeries(items []models.ChunkStats) []float64 {
	out := make([]float64, 0, len(items))
	for _, c := range items {
		out = append(out, float64(c.ChunkSize)/(1024*1024))
	}
	return out
}

func pageFooter(pg viewstate.PaginationState, totalPages int, spec *viewstate.SortSpec, filter string) string {
	parts := []string{
		fmt.Sprintf("Page %d/%d", pg.CurrentPage+1, max(totalPages, 1)),
		fmt.Sprintf("%s items", utils.AddCommas(fmt.Sprint(pg.TotalItems))),
		fmt.Sprintf("%d/page", pg.PageSize),
	}
	if spec != nil {
		parts = append(parts, "sort "+spec.String())
	}
	if filter != "" {
		parts = append(parts, fmt.Sprintf("filter %q", filter))
	}
	return strings.Join(parts, " • ")
}

func scanCmd(ctx context.Context, rpcURLs []string, address string) tea.Cmd {
	return func() tea.Msg {
		txs, failed, err := rpc.ScanTransactions(ctx, rpcURLs, address, scanDepth, scanLimit)
		return scanMsg{address: address, txs: txs, failed: failed, err: err}
	}
}

func enrichCmd(ctx context.Context, rpcURLs []string, key viewstate.Key, n models.Name) tea.Cmd {
	return func() tea.Msg {
		out, err := rpc.Enrich(ctx, rpcURLs, n)
		return enrichedMsg{key: key, name: out, err: err}
	}
}

func scanDetail(msg scanMsg) string {
	if len(msg.txs) == 0 {
		return subtleStyle.Render("No transactions in the last " + fmt.Sprint(scanDepth) + " blocks")
	}
	lines := []string{tableHeaderStyle.Render(fmt.Sprintf("%-12s %-14s %-14s %-14s %s", "BLOCK", "HASH", "FROM", "TO", "VALUE"))}
	for _, tx := range msg.txs {
		lines = append(lines, fmt.Sprintf("%-12d %-14s %-14s %-14s %s",
			tx.BlockNumber,
			utils.ShortenAddr(tx.Hash),
			utils.ShortenAddr(tx.From),
			utils.ShortenAddr(tx.To),
			weiString(tx.Value),
		))
	}
	return strings.Join(lines, "\n")
}

func listenForWatcher(sub watcher.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}
