package thirdparty

// Network names follow the ethers naming the fixtures are keyed by.
var networkChainIds = map[string]int64{
	"homestead": 1,
	"goerli":    5,
	"sepolia":   11155111,
	"matic":     137,
	"arbitrum":  42161,
	"optimism":  10,
}

func ChainIdOf(network string) (int64, bool) {
	id, ok := networkChainIds[network]
	return id, ok
}

// lookupByNetwork resolves a vendor's chain-id keyed table for network.
func lookupByNetwork(table map[int64]string, network string) (string, bool) {
	chainId, ok := ChainIdOf(network)
	if !ok {
		return "", false
	}
	v, ok := table[chainId]
	return v, ok
}
