package models

import "math/big"

// Field accessors return the sortable value of a column. Unknown columns
// and unparsable amounts yield nil, which sorts last.

func NameField(n Name, key string) any {
	switch key {
	case "address":
		return AddressKey(n.Address)
	case "name":
		return n.Name
	case "tags":
		return n.Tags
	case "source":
		return n.Source
	case "symbol":
		return n.Symbol
	case "decimals":
		return n.Decimals
	case "deleted":
		return n.Deleted
	case "isCustom":
		return n.IsCustom
	case "isContract":
		return n.IsContract
	}
	return nil
}

func MonitorField(m Monitor, key string) any {
	switch key {
	case "address":
		return AddressKey(m.Address)
	case "name":
		return m.Name
	case "nRecords":
		return m.NRecords
	case "fileSize":
		return m.FileSize
	case "lastScanned":
		return m.LastScanned
	}
	return nil
}

func AbiField(a Abi, key string) any {
	switch key {
	case "address":
		return AddressKey(a.Address)
	case "name":
		return a.Name
	case "fileSize":
		return a.FileSize
	case "nFunctions":
		return a.NFunctions
	case "nEvents":
		return a.NEvents
	case "isKnown":
		return a.IsKnown
	case "isEmpty":
		return a.IsEmpty
	}
	return nil
}

func ExportTxField(t ExportTx, key string) any {
	switch key {
	case "hash":
		return t.Hash
	case "blockNumber":
		return t.BlockNumber
	case "transactionIndex":
		return t.TransactionIndex
	case "from":
		return AddressKey(t.From)
	case "to":
		return AddressKey(t.To)
	case "value":
		return parseAmount(t.Value)
	case "timestamp":
		return t.Timestamp
	}
	return nil
}

func ExportBalanceField(b ExportBalance, key string) any {
	switch key {
	case "address":
		return AddressKey(b.Address)
	case "asset":
		return AddressKey(b.Asset)
	case "symbol":
		return b.Symbol
	case "balance":
		return parseAmount(b.Balance)
	case "blockNumber":
		return b.BlockNumber
	}
	return nil
}

func ChunkRecordField(c ChunkRecord, key string) any {
	switch key {
	case "range":
		return c.Range
	case "bloomHash":
		return c.BloomHash
	case "indexHash":
		return c.IndexHash
	case "bloomSize":
		return c.BloomSize
	case "indexSize":
		return c.IndexSize
	}
	return nil
}

func ChunkStatsField(c ChunkStats, key string) any {
	switch key {
	case "range":
		return c.Range
	case "nAddrs":
		return c.NAddrs
	case "nApps":
		return c.NApps
	case "nBlocks":
		return c.NBlocks
	case "addrsPerBlock":
		return c.AddrsPerBlock
	case "appsPerAddr":
		return c.AppsPerAddr
	case "chunkSize":
		return c.ChunkSize
	}
	return nil
}

// parseAmount returns nil rather than a typed nil pointer for bad input.
func parseAmount(v string) any {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil
	}
	return n
}
