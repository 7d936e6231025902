package backend

import (
	"fmt"
	"math/big"
	"time"

	"chainview/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Demo holds in-memory resources seeded with deterministic sample data.
type Demo struct {
	Names          *Memory[models.Name]
	Monitors       *Memory[models.Monitor]
	Abis           *Memory[models.Abi]
	ExportTxs      *Memory[models.ExportTx]
	ExportBalances *Memory[models.ExportBalance]
	Chunks         *Memory[models.ChunkRecord]
	ChunkStats     *Memory[models.ChunkStats]
}

var demoTags = []string{
	"30-Contracts:Tokens",
	"50-Tokens:ERC20",
	"80-Individuals:Friends",
	"90-Early:Prefund",
}

// demoAddress derives a stable checksummed address from a seed.
func demoAddress(seed string) string {
	return common.BytesToAddress(crypto.Keccak256([]byte(seed))).Hex()
}

func demoHash(seed string) string {
	return common.BytesToHash(crypto.Keccak256([]byte(seed))).Hex()
}

// NewDemo seeds every resource. latency is applied to each call.
func NewDemo(latency time.Duration) *Demo {
	names := make([]models.Name, 0, 57)
	for i := range 57 {
		tag := demoTags[i%len(demoTags)]
		names = append(names, models.Name{
			Address:    demoAddress(fmt.Sprintf("name-%d", i)),
			Name:       fmt.Sprintf("Account %02d", i),
			Tags:       tag,
			Source:     "demo",
			IsCustom:   i%3 == 0,
			IsContract: i%4 == 0,
			Deleted:    i%11 == 0,
		})
	}

	monitors := make([]models.Monitor, 0, 14)
	for i := range 14 {
		monitors = append(monitors, models.Monitor{
			Address:     names[i].Address,
			Name:        names[i].Name,
			NRecords:    int64(40 + i*137%900),
			FileSize:    int64(4096 + i*7919),
			LastScanned: uint64(19_000_000 + i*1_234),
			Deleted:     i%5 == 4,
		})
	}

	abis := make([]models.Abi, 0, 23)
	for i := range 23 {
		abis = append(abis, models.Abi{
			Address:    demoAddress(fmt.Sprintf("abi-%d", i)),
			Name:       fmt.Sprintf("Contract%02d", i),
			FileSize:   int64(1200 + i*311),
			NFunctions: 3 + i%17,
			NEvents:    i % 9,
			IsKnown:    i < 4,
			IsEmpty:    i%7 == 6,
		})
	}

	wei := new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)
	txs := make([]models.ExportTx, 0, 42)
	for i := range 42 {
		v := new(big.Int).Mul(wei, big.NewInt(int64(i*i+1)))
		txs = append(txs, models.ExportTx{
			Hash:             demoHash(fmt.Sprintf("tx-%d", i)),
			BlockNumber:      uint64(18_500_000 + i*97),
			TransactionIndex: uint64(i % 13),
			From:             names[i%len(names)].Address,
			To:               names[(i+5)%len(names)].Address,
			Value:            v.String(),
			Timestamp:        1_700_000_000 + int64(i)*1_164,
		})
	}

	balances := make([]models.ExportBalance, 0, 16)
	for i := range 16 {
		b := new(big.Int).Mul(wei, big.NewInt(int64(1000+i*733)))
		balances = append(balances, models.ExportBalance{
			Address:     names[0].Address,
			Asset:       demoAddress(fmt.Sprintf("asset-%d", i)),
			Symbol:      fmt.Sprintf("TK%d", i),
			Balance:     b.String(),
			Decimals:    18,
			BlockNumber: uint64(18_600_000 + i*1_001),
		})
	}

	chunks := make([]models.ChunkRecord, 0, 36)
	stats := make([]models.ChunkStats, 0, 36)
	first := uint64(0)
	for i := range 36 {
		last := first + uint64(50_000+i*1_777)
		rng := fmt.Sprintf("%09d-%09d", first, last)
		chunks = append(chunks, models.ChunkRecord{
			Range:     rng,
			BloomHash: demoHash("bloom-" + rng),
			IndexHash: demoHash("index-" + rng),
			BloomSize: int64(131_072 * (1 + i%3)),
			IndexSize: int64(2_000_000 + i*48_611),
		})
		nAddrs := int64(200_000 + i*3_001)
		nApps := int64(2_000_000 + i*17_389)
		nBlocks := int64(last - first + 1)
		stats = append(stats, models.ChunkStats{
			Range:         rng,
			NAddrs:        nAddrs,
			NApps:         nApps,
			NBlocks:       nBlocks,
			AddrsPerBlock: float64(nAddrs) / float64(nBlocks),
			AppsPerAddr:   float64(nApps) / float64(nAddrs),
			ChunkSize:     int64(2_000_000 + i*48_611),
		})
		first = last + 1
	}

	return &Demo{
		Names: NewMemory(names, MemoryOptions[models.Name]{
			KeyOf:      models.NameKey,
			Field:      models.NameField,
			IsDeleted:  func(n models.Name) bool { return n.Deleted },
			SetDeleted: func(n models.Name, d bool) models.Name { n.Deleted = d; return n },
			InFacet:    NameInFacet,
			Autoname:   Autoname,
			Latency:    latency,
		}),
		Monitors: NewMemory(monitors, MemoryOptions[models.Monitor]{
			KeyOf:      models.MonitorKey,
			Field:      models.MonitorField,
			IsDeleted:  func(m models.Monitor) bool { return m.Deleted },
			SetDeleted: func(m models.Monitor, d bool) models.Monitor { m.Deleted = d; return m },
			Latency:    latency,
		}),
		Abis: NewMemory(abis, MemoryOptions[models.Abi]{
			KeyOf:   models.AbiKey,
			Field:   models.AbiField,
			Stale:   func(a models.Abi) bool { return a.IsEmpty },
			Latency: latency,
		}),
		ExportTxs: NewMemory(txs, MemoryOptions[models.ExportTx]{
			KeyOf:   models.ExportTxKey,
			Field:   models.ExportTxField,
			Latency: latency,
		}),
		ExportBalances: NewMemory(balances, MemoryOptions[models.ExportBalance]{
			KeyOf:   models.ExportBalanceKey,
			Field:   models.ExportBalanceField,
			Latency: latency,
		}),
		Chunks: NewMemory(chunks, MemoryOptions[models.ChunkRecord]{
			KeyOf:   models.ChunkRecordKey,
			Field:   models.ChunkRecordField,
			Latency: latency,
		}),
		ChunkStats: NewMemory(stats, MemoryOptions[models.ChunkStats]{
			KeyOf:   models.ChunkStatsKey,
			Field:   models.ChunkStatsField,
			Latency: latency,
		}),
	}
}

// Name facets.
const (
	FacetAll     = "all"
	FacetCustom  = "custom"
	FacetDeleted = "deleted"
)

// NameInFacet selects names for a facet. Unknown facets match everything.
func NameInFacet(n models.Name, facet string) bool {
	switch facet {
	case FacetCustom:
		return n.IsCustom
	case FacetDeleted:
		return n.Deleted
	}
	return true
}

// Autoname names a record after the first bytes of its address and marks
// it as custom.
func Autoname(n models.Name) models.Name {
	addr := common.HexToAddress(n.Address).Hex()
	n.Name = "Auto " + addr[:10]
	n.Source = "autoname"
	n.IsCustom = true
	return n
}
