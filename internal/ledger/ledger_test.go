package ledger

import (
	"testing"

	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestCodeIDFromResult(t *testing.T) {
	tx := &types.TxResult{
		TxHash: "ABC",
		Events: []*types.Event{
			{Type: "message", Attributes: []*types.Attribute{{Key: "action", Value: "/cosmwasm.wasm.v1.MsgStoreCode"}}},
			{Type: "store_code", Attributes: []*types.Attribute{{Key: "code_checksum", Value: "aa"}, {Key: "code_id", Value: "42"}}},
		},
	}
	codeID, err := CodeIDFromResult(tx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), codeID)

	tx.Events[1].Attributes[1].Value = "forty-two"
	_, err = CodeIDFromResult(tx)
	assert.Regexp(t, "invalid code id 'forty-two'", err)

	_, err = CodeIDFromResult(&types.TxResult{TxHash: "DEF"})
	var missing *types.MissingAttributeError
	assert.ErrorAs(t, err, &missing)
}

func TestContractAddressFromResult(t *testing.T) {
	tx := &types.TxResult{
		Events: []*types.Event{
			{Type: "instantiate", Attributes: []*types.Attribute{{Key: "_contract_address", Value: "jmes1contract"}, {Key: "code_id", Value: "3"}}},
		},
	}
	addr, err := ContractAddressFromResult(tx)
	assert.NoError(t, err)
	assert.Equal(t, "jmes1contract", addr)

	_, err = ContractAddressFromResult(&types.TxResult{})
	assert.Error(t, err)
}
