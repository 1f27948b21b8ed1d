package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/erpc/conformance/architecture/evm"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/fixtures"
	"github.com/erpc/conformance/stats"
)

// Case is one planned sub-test.
type Case struct {
	stats.CaseInfo

	// Negative cases expect the operation to be rejected as unsupported.
	Negative bool
	// Pending cases get a single attempt under the pending timeout.
	Pending bool
	// SkipReason, when set, reports the case as skipped without calling the
	// provider.
	SkipReason string

	exec caseExec
}

// caseExec splits a case into the provider call and the comparison of its
// result, so the negative branch can run the call alone.
type caseExec struct {
	call    func(ctx context.Context) (interface{}, error)
	compare func(actual interface{}) error
}

// attempt performs one attempt of the case.
func (c *Case) attempt(ctx context.Context) error {
	actual, err := c.exec.call(ctx)
	if c.Negative {
		return ExpectUnsupported(c.Operation, err)
	}
	if err != nil {
		return err
	}
	return c.exec.compare(actual)
}

var operationVerbs = map[common.Operation]string{
	common.OperationGetBalance:            "fetches address balance",
	common.OperationGetCode:               "fetches address code",
	common.OperationLookupAddress:         "fetches address reverse record",
	common.OperationGetStorageAt:          "fetches address storage",
	common.OperationGetBlockByNumber:      "fetches block by number",
	common.OperationGetBlockByHash:        "fetches block by hash",
	common.OperationGetPendingBlock:       "fetches a pending block",
	common.OperationGetTransaction:        "fetches transaction",
	common.OperationGetTransactionReceipt: "fetches transaction receipt",
}

// Sumhash shortens a hash or address to its first six and last four
// characters.
func Sumhash(hash string) string {
	if len(hash) <= 10 {
		return hash
	}
	return hash[:6] + ".." + hash[len(hash)-4:]
}

// CaseName renders "<verb>: <provider>.<network>.<short>". Negative cases
// read "throws unsupported operation for fetching ...".
func CaseName(operation common.Operation, negative bool, provider, network, short string) string {
	verb := operationVerbs[operation]
	if verb == "" {
		verb = string(operation)
	}
	if negative {
		verb = "throws unsupported operation for " + strings.Replace(verb, "fetches", "fetching", 1)
	}
	target := provider
	if network != "" {
		target += "." + network
	}
	if short != "" {
		target += "." + short
	}
	return verb + ": " + target
}

type caseBuilder struct {
	provider   common.Provider
	providerId string
	vendor     string
	network    string
	skip       *SkipMatrix
}

func (b *caseBuilder) newCase(operation common.Operation, short string, e caseExec) *Case {
	negative := b.skip.IsUnsupported(b.providerId, b.vendor, operation)
	return &Case{
		CaseInfo: stats.CaseInfo{
			Name:      CaseName(operation, negative, b.providerId, b.network, short),
			Provider:  b.providerId,
			Network:   b.network,
			Operation: operation,
		},
		Negative: negative,
		exec:     e,
	}
}

// addressCases yields one case per populated optional field, in the order
// balance, code, name, storage.
func (b *caseBuilder) addressCases(f fixtures.AddressFixture, reverseLookup bool) []*Case {
	var cases []*Case
	short := Sumhash(f.Address)
	p := b.provider

	if f.Balance != nil {
		expected := *f.Balance
		cases = append(cases, b.newCase(common.OperationGetBalance, short, caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				return p.GetBalance(ctx, f.Address)
			},
			compare: func(actual interface{}) error {
				if got := actual.(common.Quantity); !got.Equal(expected) {
					return common.NewErrFieldMismatch("balance", expected, got)
				}
				return nil
			},
		}))
	}

	if f.Code != nil {
		expected := *f.Code
		cases = append(cases, b.newCase(common.OperationGetCode, short, caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				return p.GetCode(ctx, f.Address)
			},
			compare: func(actual interface{}) error {
				if got := common.NormalizeHex(actual.(string)); got != expected {
					return common.NewErrFieldMismatch("code", expected, got)
				}
				return nil
			},
		}))
	}

	if f.Name != nil {
		expected := *f.Name
		c := b.newCase(common.OperationLookupAddress, short, caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				return p.LookupAddress(ctx, f.Address)
			},
			compare: func(actual interface{}) error {
				got := actual.(*string)
				if got == nil || *got != expected {
					return common.NewErrFieldMismatch("name", expected, got)
				}
				return nil
			},
		})
		if !reverseLookup {
			c.SkipReason = "reverse lookup checks are disabled"
		}
		cases = append(cases, c)
	}

	if len(f.Storage) > 0 {
		slots := f.StorageSlots()
		cases = append(cases, b.newCase(common.OperationGetStorageAt, short, caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				values := make([]string, 0, len(slots))
				for _, slot := range slots {
					v, err := p.GetStorageAt(ctx, f.Address, slot)
					if err != nil {
						return nil, err
					}
					values = append(values, v)
				}
				return values, nil
			},
			compare: func(actual interface{}) error {
				values := actual.([]string)
				for i, slot := range slots {
					expected := f.Storage[slot]
					if got := common.NormalizeWord(values[i]); got != expected {
						return common.NewErrFieldMismatch(fmt.Sprintf("storage:%s", slot), expected, got)
					}
				}
				return nil
			},
		}))
	}

	return cases
}

func (b *caseBuilder) blockCases(f fixtures.BlockFixture) []*Case {
	p := b.provider
	compare := func(actual interface{}) error {
		return evm.CompareBlock(actual.(*common.Block), f)
	}

	number, err := f.Number.Uint64()
	numberLabel := f.Number.String()
	byNumber := common.BlockTag(f.Number)
	if err == nil {
		byNumber = common.BlockTagFromNumber(number)
	}
	byHash := common.BlockTagFromHash(f.Hash)

	return []*Case{
		b.newCase(common.OperationGetBlockByNumber, numberLabel, caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				return p.GetBlock(ctx, byNumber)
			},
			compare: compare,
		}),
		b.newCase(common.OperationGetBlockByHash, Sumhash(f.Hash), caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				return p.GetBlock(ctx, byHash)
			},
			compare: compare,
		}),
	}
}

func (b *caseBuilder) transactionCase(f fixtures.TxFixture) *Case {
	p := b.provider
	return b.newCase(common.OperationGetTransaction, Sumhash(f.Hash), caseExec{
		call: func(ctx context.Context) (interface{}, error) {
			return p.GetTransaction(ctx, f.Hash)
		},
		compare: func(actual interface{}) error {
			return evm.CompareTransaction(actual.(*common.Transaction), f)
		},
	})
}

func (b *caseBuilder) receiptCase(f fixtures.ReceiptFixture) *Case {
	p := b.provider
	return b.newCase(common.OperationGetTransactionReceipt, Sumhash(f.Hash), caseExec{
		call: func(ctx context.Context) (interface{}, error) {
			return p.GetTransactionReceipt(ctx, f.Hash)
		},
		compare: func(actual interface{}) error {
			return evm.CompareReceipt(actual.(*common.Receipt), f)
		},
	})
}

// pendingCase checks the shape of the pending block. A nil provider, meaning
// no endpoint on the pending network, fails the case on every run.
func pendingCase(providerId, network string, p common.Provider) *Case {
	return &Case{
		CaseInfo: stats.CaseInfo{
			Name:      CaseName(common.OperationGetPendingBlock, false, providerId, "", ""),
			Provider:  providerId,
			Network:   network,
			Operation: common.OperationGetPendingBlock,
		},
		Pending: true,
		exec: caseExec{
			call: func(ctx context.Context) (interface{}, error) {
				if p == nil {
					return nil, common.NewErrShapeInvariant("provider", "no endpoint configured on "+network)
				}
				return p.GetBlock(ctx, common.BlockTagPending)
			},
			compare: func(actual interface{}) error {
				return evm.CheckPendingBlock(actual.(*common.Block))
			},
		},
	}
}
