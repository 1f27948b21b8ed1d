package common

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// Quantity is a numeric value in the textual form a backend or a fixture
// author produced it: "0x1a", "0x001a" and "26" are the same Quantity value.
type Quantity string

func QuantityFromUint64(v uint64) Quantity {
	return Quantity(strconv.FormatUint(v, 10))
}

func (q Quantity) Uint256() (*uint256.Int, error) {
	s := strings.TrimSpace(string(q))
	if s == "" {
		return nil, fmt.Errorf("empty quantity")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			return new(uint256.Int), nil
		}
		return uint256.FromHex("0x" + strings.ToLower(digits))
	}
	return uint256.FromDecimal(s)
}

func (q Quantity) Uint64() (uint64, error) {
	v, err := q.Uint256()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("quantity %s overflows uint64", q)
	}
	return v.Uint64(), nil
}

func (q Quantity) IsValid() bool {
	_, err := q.Uint256()
	return err == nil
}

// Equal compares by numeric value. An unparseable quantity never equals
// anything; two empty quantities are equal.
func (q Quantity) Equal(other Quantity) bool {
	if q == "" && other == "" {
		return true
	}
	a, errA := q.Uint256()
	b, errB := other.Uint256()
	if errA != nil || errB != nil {
		return false
	}
	return a.Eq(b)
}

// String renders the canonical decimal form, or the raw text if unparseable.
func (q Quantity) String() string {
	v, err := q.Uint256()
	if err != nil {
		return string(q)
	}
	return v.Dec()
}

func (q Quantity) Ptr() *Quantity {
	return &q
}

func (q *Quantity) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("quantity must be a scalar, got yaml kind %d", value.Kind)
	}
	return q.set(value.Value)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return q.set(s)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cannot unmarshal quantity: %w", err)
	}
	return q.set(n.String())
}

// set accepts an empty value (absent field) or an integer in hex or decimal
// form. Exponent and fractional numbers are rejected.
func (q *Quantity) set(raw string) error {
	v := Quantity(raw)
	if raw != "" {
		if _, err := v.Uint256(); err != nil {
			return fmt.Errorf("invalid quantity %q: %w", raw, err)
		}
	}
	*q = v
	return nil
}

// NormalizeAddress returns the EIP-55 checksummed form of a 20-byte address.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	if !gethcommon.IsHexAddress(address) {
		return address
	}
	return gethcommon.HexToAddress(address).Hex()
}

func NormalizeAddressPtr(address *string) *string {
	if address == nil {
		return nil
	}
	n := NormalizeAddress(*address)
	return &n
}

// NormalizeHex lowercases a 0x-prefixed byte string (hashes, calldata, bloom).
func NormalizeHex(value string) string {
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "0x") {
		return "0x" + lower
	}
	return lower
}

func IsBlockHash(value string) bool {
	return len(value) == 66 && strings.HasPrefix(strings.ToLower(value), "0x")
}

// RenderValue formats a comparator operand for mismatch reports. Nil
// pointers render as "null".
func RenderValue(v interface{}) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case *string:
		if tv == nil {
			return "null"
		}
		return *tv
	case *Quantity:
		if tv == nil {
			return "null"
		}
		return tv.String()
	case Quantity:
		return tv.String()
	case string:
		return tv
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeWord renders a 32-byte value (storage words, signature r and s) as
// zero-padded lowercase hex.
func NormalizeWord(value string) string {
	if value == "" {
		return ""
	}
	return gethcommon.HexToHash(value).Hex()
}
