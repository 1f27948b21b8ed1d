package common

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestQuantity(t *testing.T) {
	t.Run("EqualAcrossEncodings", func(t *testing.T) {
		assert.True(t, Quantity("0x1a").Equal("26"))
		assert.True(t, Quantity("0x001A").Equal("0x1a"))
		assert.True(t, Quantity("0x0").Equal("0"))
		assert.False(t, Quantity("0x1a").Equal("27"))
	})

	t.Run("UnparseableNeverEqual", func(t *testing.T) {
		assert.False(t, Quantity("abc").IsValid())
		assert.False(t, Quantity("abc").Equal("abc"))
		assert.False(t, Quantity("1e+18").Equal("1e+18"))
		assert.False(t, Quantity("abc").Equal("0xabc"))
		assert.True(t, Quantity("").Equal(""))
		assert.False(t, Quantity("").Equal("0x0"))
		assert.Equal(t, "abc", Quantity("abc").String())
	})

	t.Run("Uint64Overflow", func(t *testing.T) {
		_, err := Quantity("0x10000000000000000").Uint64()
		assert.Error(t, err)
		v, err := Quantity("0xb443").Uint64()
		require.NoError(t, err)
		assert.EqualValues(t, 46147, v)
	})

	t.Run("UnmarshalJSONAcceptsStringsAndNumbers", func(t *testing.T) {
		var payload struct {
			A Quantity `json:"a"`
			B Quantity `json:"b"`
		}
		require.NoError(t, sonic.Unmarshal([]byte(`{"a":"0x5208","b":21000}`), &payload))
		assert.True(t, payload.A.Equal(payload.B))
		assert.Equal(t, "21000", payload.B.String())
	})

	t.Run("UnmarshalJSONRejectsNonIntegers", func(t *testing.T) {
		for _, raw := range []string{`1e+18`, `"1e+18"`, `1.5`, `-1`, `"0xzz"`} {
			var q Quantity
			err := sonic.Unmarshal([]byte(raw), &q)
			assert.Error(t, err, raw)
			assert.Equal(t, Quantity(""), q, raw)
		}
	})

	t.Run("UnmarshalJSONAllowsEmpty", func(t *testing.T) {
		var payload struct {
			A Quantity  `json:"a"`
			B *Quantity `json:"b"`
		}
		require.NoError(t, sonic.Unmarshal([]byte(`{"a":"","b":null}`), &payload))
		assert.Equal(t, Quantity(""), payload.A)
		assert.Nil(t, payload.B)
	})

	t.Run("UnmarshalYAMLRejectsNonIntegers", func(t *testing.T) {
		var payload struct {
			Balance Quantity `yaml:"balance"`
		}
		err := yaml.Unmarshal([]byte("balance: 1e+18\n"), &payload)
		assert.ErrorContains(t, err, `invalid quantity "1e+18"`)

		require.NoError(t, yaml.Unmarshal([]byte("balance: 4918774100000000\n"), &payload))
		assert.True(t, payload.Balance.Equal("0x11799956f5fd00"))
	})
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "0xAC1639CF97a3A46D431e6d1216f576622894cBB5", NormalizeAddress("0xac1639cf97a3a46d431e6d1216f576622894cbb5"))
	assert.Equal(t, "not-an-address", NormalizeAddress("not-an-address"))
	assert.Nil(t, NormalizeAddressPtr(nil))

	assert.Equal(t, "0xabcd", NormalizeHex("0xABCD"))
	assert.Equal(t, "0xabcd", NormalizeHex("ABCD"))
	assert.Equal(t, "", NormalizeHex(""))

	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000002a", NormalizeWord("0x2a"))
	assert.Equal(t, "", NormalizeWord(""))
}

func TestRenderValue(t *testing.T) {
	var nilString *string
	var nilQuantity *Quantity
	assert.Equal(t, "null", RenderValue(nil))
	assert.Equal(t, "null", RenderValue(nilString))
	assert.Equal(t, "null", RenderValue(nilQuantity))
	assert.Equal(t, "26", RenderValue(Quantity("0x1a").Ptr()))
	assert.Equal(t, "7", RenderValue(7))
}

func TestBlockTag(t *testing.T) {
	hash := BlockTagFromHash("0x4E3A3754410177E6937EF1F84BBA68EA139E8D1A2258C5F85DB9F1CD715A1BDD")
	assert.True(t, hash.IsHash())
	assert.Equal(t, OperationGetBlockByHash, hash.Operation())
	assert.Equal(t, OperationGetBlockByNumber, BlockTagFromNumber(46147).Operation())
	assert.Equal(t, OperationGetPendingBlock, BlockTagPending.Operation())

	n, err := BlockTagFromNumber(46147).HexNumber()
	require.NoError(t, err)
	assert.Equal(t, "0xb443", n)

	n, err = BlockTagPending.HexNumber()
	require.NoError(t, err)
	assert.Equal(t, "pending", n)
}
