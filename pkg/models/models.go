package models

import (
	"strings"
	"time"
)

// Operation names a mutation understood by the backend.
type Operation string

const (
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
	OpUndelete Operation = "undelete"
	OpRemove   Operation = "remove"
	OpAutoname Operation = "autoname"
)

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete, OpUndelete, OpRemove, OpAutoname:
		return true
	}
	return false
}

// Query describes one page request.
type Query struct {
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
	SortKey string `json:"sortKey,omitempty"`
	SortDir string `json:"sortDir,omitempty"`
	Filter  string `json:"filter,omitempty"`
	Facet   string `json:"facet,omitempty"`
}

// Page is one page of a resource as returned by the backend.
type Page[T any] struct {
	Items      []T  `json:"items"`
	TotalItems int  `json:"totalItems"`
	Loading    bool `json:"loading"`
}

// Name is a labelled address.
type Name struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Tags       string `json:"tags,omitempty"`
	Source     string `json:"source,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Decimals   int    `json:"decimals,omitempty"`
	Deleted    bool   `json:"deleted"`
	IsCustom   bool   `json:"isCustom"`
	IsContract bool   `json:"isContract"`
}

// Monitor is an address whose appearances are tracked locally.
type Monitor struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	NRecords    int64  `json:"nRecords"`
	FileSize    int64  `json:"fileSize"`
	LastScanned uint64 `json:"lastScanned"`
	Deleted     bool   `json:"deleted"`
}

// Abi is a cached contract interface.
type Abi struct {
	Address    string `json:"address"`
	Name       string `json:"name,omitempty"`
	FileSize   int64  `json:"fileSize"`
	NFunctions int    `json:"nFunctions"`
	NEvents    int    `json:"nEvents"`
	IsKnown    bool   `json:"isKnown"`
	IsEmpty    bool   `json:"isEmpty"`
}

// ExportTx is one exported transaction.
type ExportTx struct {
	Hash             string `json:"hash"`
	BlockNumber      uint64 `json:"blockNumber"`
	TransactionIndex uint64 `json:"transactionIndex"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"` // wei, base 10
	Timestamp        int64  `json:"timestamp"`
}

// ExportBalance is one balance change in an export.
type ExportBalance struct {
	Address     string `json:"address"`
	Asset       string `json:"asset"`
	Symbol      string `json:"symbol"`
	Balance     string `json:"balance"` // base units, base 10
	Decimals    int    `json:"decimals"`
	BlockNumber uint64 `json:"blockNumber"`
}

// ChunkRecord is the manifest entry of one index chunk.
type ChunkRecord struct {
	Range     string `json:"range"`
	BloomHash string `json:"bloomHash"`
	IndexHash string `json:"indexHash"`
	BloomSize int64  `json:"bloomSize"`
	IndexSize int64  `json:"indexSize"`
}

// ChunkStats summarizes the contents of one index chunk.
type ChunkStats struct {
	Range         string  `json:"range"`
	NAddrs        int64   `json:"nAddrs"`
	NApps         int64   `json:"nApps"`
	NBlocks       int64   `json:"nBlocks"`
	AddrsPerBlock float64 `json:"addrsPerBlock"`
	AppsPerAddr   float64 `json:"appsPerAddr"`
	ChunkSize     int64   `json:"chunkSize"`
}

// ChainHead is the most recent block seen on the configured chain.
type ChainHead struct {
	ChainID int64         `json:"chainId"`
	Number  uint64        `json:"number"`
	Time    time.Time     `json:"time"`
	RPCURL  string        `json:"rpcUrl"`
	Latency time.Duration `json:"latency"`
}

// AddressKey normalizes an address for use as an identity key.
func AddressKey(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// NameKey identifies a Name.
func NameKey(n Name) string { return AddressKey(n.Address) }

// MonitorKey identifies a Monitor.
func MonitorKey(m Monitor) string { return AddressKey(m.Address) }

// AbiKey identifies an Abi.
func AbiKey(a Abi) string { return AddressKey(a.Address) }

// ExportTxKey identifies an ExportTx.
func ExportTxKey(t ExportTx) string { return strings.ToLower(t.Hash) }

// ExportBalanceKey identifies an ExportBalance.
func ExportBalanceKey(b ExportBalance) string {
	return AddressKey(b.Asset) + "@" + AddressKey(b.Address)
}

// ChunkRecordKey identifies a ChunkRecord.
func ChunkRecordKey(c ChunkRecord) string { return c.Range }

// ChunkStatsKey identifies a ChunkStats row.
func ChunkStatsKey(c ChunkStats) string { return c.Range }
