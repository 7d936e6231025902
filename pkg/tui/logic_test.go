package tui

import (
	"strings"
	"testing"

	"chainview/pkg/models"
	"chainview/pkg/viewstate"
	"chainview/pkg/watcher"

	"github.com/stretchr/testify/assert"
)

func TestGroupByTag(t *testing.T) {
	items := []models.Name{
		{Name: "a", Tags: "30-Contracts"},
		{Name: "b", Tags: ""},
		{Name: "c", Tags: "10-Exchanges"},
		{Name: "d", Tags: "30-Contracts"},
		{Name: "e", Tags: "  "},
	}

	groups, order := groupByTag(items)
	if assert.Len(t, groups, 3) {
		assert.Equal(t, "(untagged)", groups[0].tag)
		assert.Equal(t, "10-Exchanges", groups[1].tag)
		assert.Equal(t, "30-Contracts", groups[2].tag)
		assert.Equal(t, "a", groups[2].items[0].Name)
		assert.Equal(t, "d", groups[2].items[1].Name)
	}
	assert.Equal(t, []int{1, 4, 2, 0, 3}, order)
}

func TestGroupByTagEmpty(t *testing.T) {
	groups, order := groupByTag(nil)
	assert.Empty(t, groups)
	assert.Empty(t, order)
}

func TestChunkSizeSeries(t *testing.T) {
	got := chunkSizeSeries([]models.ChunkStats{{ChunkSize: 1 << 20}, {ChunkSize: 3 << 19}})
	assert.Equal(t, []float64{1, 1.5}, got)
}

func TestPageFooter(t *testing.T) {
	pg := viewstate.PaginationState{CurrentPage: 1, PageSize: 10, TotalItems: 1234}
	spec := &viewstate.SortSpec{Key: "name", Direction: viewstate.Asc}

	got := pageFooter(pg, 124, spec, "uni")
	assert.Equal(t, `Page 2/124 • 1,234 items • 10/page • sort name:asc • filter "uni"`, got)

	got = pageFooter(viewstate.PaginationState{PageSize: 5}, 0, nil, "")
	assert.Equal(t, "Page 1/1 • 0 items • 5/page", got)
}

func TestScanDetail(t *testing.T) {
	empty := scanDetail(scanMsg{address: "0xabc"})
	assert.Contains(t, empty, "No transactions in the last 256 blocks")

	body := scanDetail(scanMsg{
		address: "0xabc",
		txs: []models.ExportTx{{
			Hash:        "0x1111111111111111111111111111111111111111111111111111111111111111",
			BlockNumber: 19000001,
			From:        "0x00000000000000000000000000000000000000aa",
			To:          "0x00000000000000000000000000000000000000bb",
			Value:       "1000000000000000000",
		}},
	})
	lines := strings.Split(body, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "19000001")
	assert.Contains(t, lines[1], "0x0000...00aa")
}

func TestListenForWatcher(t *testing.T) {
	sub := make(watcher.Subscriber, 1)
	sub <- watcher.Event{Type: watcher.EventStatus, Data: "ok"}
	assert.Equal(t, watcher.Event{Type: watcher.EventStatus, Data: "ok"}, listenForWatcher(sub)())

	close(sub)
	assert.Nil(t, listenForWatcher(sub)())
}
