package harness

import (
	"fmt"

	"github.com/erpc/conformance/common"
)

// SkipEntry marks an operation a provider is known never to support. Provider
// and Operation are matched as wildcard patterns; Provider matches either the
// provider id or its vendor.
type SkipEntry struct {
	Provider  string           `json:"provider"`
	Operation common.Operation `json:"operation"`
}

// DefaultSkipEntries are always part of the matrix; config entries are added
// on top of them.
var DefaultSkipEntries = []SkipEntry{
	{Provider: "etherscan", Operation: common.OperationGetBlockByHash},
	{Provider: "etherscan", Operation: common.OperationLookupAddress},
}

// SkipMatrix turns cases for unsupported operations into negative cases. It
// is read-only once built and safe to share.
type SkipMatrix struct {
	entries []SkipEntry
}

func NewSkipMatrix(extra ...*common.SkipEntryConfig) (*SkipMatrix, error) {
	entries := append([]SkipEntry{}, DefaultSkipEntries...)
	for i, e := range extra {
		if e == nil {
			continue
		}
		if err := common.ValidatePattern(e.Provider); err != nil {
			return nil, common.NewErrInvalidConfig(fmt.Sprintf("skip[%d].provider: %v", i, err))
		}
		if err := common.ValidatePattern(string(e.Operation)); err != nil {
			return nil, common.NewErrInvalidConfig(fmt.Sprintf("skip[%d].operation: %v", i, err))
		}
		entries = append(entries, SkipEntry{Provider: e.Provider, Operation: e.Operation})
	}
	return &SkipMatrix{entries: entries}, nil
}

// IsUnsupported reports whether the provider, known by its id and vendor, is
// expected to reject operation.
func (m *SkipMatrix) IsUnsupported(providerId, vendor string, operation common.Operation) bool {
	for _, e := range m.entries {
		if !MatchesProvider(e.Provider, providerId, vendor) {
			continue
		}
		if ok, _ := common.WildcardMatch(string(e.Operation), string(operation)); ok {
			return true
		}
	}
	return false
}

// MatchesProvider matches pattern against the provider id, then against its
// vendor when one is known.
func MatchesProvider(pattern, providerId, vendor string) bool {
	if ok, _ := common.WildcardMatch(pattern, providerId); ok {
		return true
	}
	if vendor == "" || vendor == providerId {
		return false
	}
	ok, _ := common.WildcardMatch(pattern, vendor)
	return ok
}

func (m *SkipMatrix) Entries() []SkipEntry {
	return append([]SkipEntry(nil), m.entries...)
}

// ExpectUnsupported judges the result of calling an operation the matrix
// marks as unsupported: only ErrUnsupportedOperation naming that same
// operation passes.
func ExpectUnsupported(operation common.Operation, err error) error {
	if err == nil {
		return common.NewErrUnexpectedSuccess(string(operation))
	}
	uoe, ok := common.AsUnsupportedOperation(err)
	if !ok || uoe.Operation != string(operation) {
		return common.NewErrWrongErrorKind(string(operation), err)
	}
	return nil
}
