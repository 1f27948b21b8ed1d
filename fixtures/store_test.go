package fixtures

import (
	"os"
	"testing"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/util"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	util.ConfigureTestLogger()
}

func loadTestdata(t *testing.T) *Store {
	t.Helper()
	data, err := os.ReadFile("testdata/homestead.yaml")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "fixtures/homestead.yaml", data, 0644))

	store, err := Load(fs, "fixtures/homestead.yaml")
	require.NoError(t, err)
	return store
}

func TestLoad(t *testing.T) {
	t.Run("LoadsNetworkInDeclarationOrder", func(t *testing.T) {
		store := loadTestdata(t)
		assert.Equal(t, []string{"homestead"}, store.Networks())

		nf, ok := store.Get("homestead")
		require.True(t, ok)
		assert.Equal(t, "homestead", nf.Network)
		assert.Len(t, nf.Addresses, 3)
		assert.Len(t, nf.Blocks, 1)
		assert.Len(t, nf.Transactions, 2)
		assert.Len(t, nf.Receipts, 2)
		assert.Equal(t, "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060", nf.Transactions[0].Hash)
		assert.Equal(t, "0x8fd8b2e9ad7fbd7a3e9c3b9d8a51e5b8c79d2e6a2a87b8c0fd1b2d7f5a0b1c2d", nf.Transactions[1].Hash)
	})

	t.Run("NormalizesAddressesAndHashes", func(t *testing.T) {
		nf, _ := loadTestdata(t).Get("homestead")
		assert.Equal(t, "0xAC1639CF97a3A46D431e6d1216f576622894cBB5", nf.Addresses[0].Address)
		assert.Equal(t, "0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd", nf.Blocks[0].Hash)
		assert.Equal(t, "0xA1E4380A3B1f749673E270229993eE55F35663b4", nf.Transactions[0].From)
		assert.Nil(t, nf.Transactions[0].Creates)
		assert.Nil(t, nf.Transactions[1].To)
	})

	t.Run("ReducesEmbeddedTransactionsToHashes", func(t *testing.T) {
		nf, _ := loadTestdata(t).Get("homestead")
		assert.Equal(t, []string{"0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"}, nf.Blocks[0].TxHashes())
	})

	t.Run("KeepsOptionalAddressFieldsAbsent", func(t *testing.T) {
		nf, _ := loadTestdata(t).Get("homestead")
		named := nf.Addresses[1]
		assert.Nil(t, named.Balance)
		assert.Nil(t, named.Code)
		assert.Nil(t, named.Storage)
		require.NotNil(t, named.Name)
		assert.Equal(t, "ricmoo.firefly.eth", *named.Name)
	})

	t.Run("SortsStorageSlotsNumerically", func(t *testing.T) {
		nf, _ := loadTestdata(t).Get("homestead")
		assert.Equal(t, []string{"0", "0x1"}, nf.Addresses[2].StorageSlots())
	})

	t.Run("ConcatenatesNetworkAcrossFiles", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "a.yaml", []byte(`
goerli:
  addresses:
    - address: "0x0000000000000000000000000000000000000001"
      balance: 1
`), 0644))
		require.NoError(t, afero.WriteFile(fs, "b.json", []byte(`{
  "sepolia": {"addresses": []},
  "goerli": {"addresses": [{"address": "0x0000000000000000000000000000000000000002", "code": "0x"}]}
}`), 0644))

		store, err := Load(fs, "a.yaml", "b.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"goerli", "sepolia"}, store.Networks())

		nf, ok := store.Get("goerli")
		require.True(t, ok)
		require.Len(t, nf.Addresses, 2)
		assert.True(t, nf.Addresses[0].Balance.Equal("0x1"))
		assert.Equal(t, "0x", *nf.Addresses[1].Code)
	})

	t.Run("RejectsMalformedBlockHash", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte(`
homestead:
  blocks:
    - hash: "0x1234"
      number: 1
`), 0644))
		_, err := Load(fs, "bad.yaml")
		require.Error(t, err)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFixtureInvalid))
	})

	t.Run("RejectsFeeMarketTransactionWithoutFees", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte(`
homestead:
  transactions:
    - hash: "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
      type: 2
`), 0644))
		_, err := Load(fs, "bad.yaml")
		require.Error(t, err)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFixtureInvalid))
	})

	t.Run("RejectsExponentBalance", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte(`
homestead:
  addresses:
    - address: "0xac1639cf97a3a46d431e6d1216f576622894cbb5"
      balance: 1e+18
`), 0644))
		_, err := Load(fs, "bad.yaml")
		require.Error(t, err)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFixtureInvalid))
		assert.ErrorContains(t, err, `invalid quantity "1e+18"`)
	})

	t.Run("FailsOnMissingFile", func(t *testing.T) {
		_, err := Load(afero.NewMemMapFs(), "missing.yaml")
		assert.Error(t, err)
	})
}

func TestStoreGetReturnsCopies(t *testing.T) {
	store := loadTestdata(t)

	first, _ := store.Get("homestead")
	first.Blocks[0].Transactions[0] = "0xdead"
	first.Addresses[2].Storage["0"] = "0xbeef"
	*first.Addresses[0].Balance = "0"

	second, _ := store.Get("homestead")
	assert.Equal(t, TxRef("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"), second.Blocks[0].Transactions[0])
	assert.NotEqual(t, "0xbeef", second.Addresses[2].Storage["0"])
	assert.True(t, second.Addresses[0].Balance.Equal("4918774100000000"))
}

func TestMustGet(t *testing.T) {
	store, err := FromNetworks(NetworkFixtures{Network: "homestead"})
	require.NoError(t, err)

	_, err = store.MustGet("homestead")
	assert.NoError(t, err)

	_, err = store.MustGet("goerli")
	assert.True(t, common.HasErrorCode(err, common.ErrCodeNetworkFixturesNotFound))
}
