package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type mapResolver struct {
	addresses AddressDocument
	codeIDs   CodeIDDocument
}

func (r *mapResolver) Address(name string) (string, bool) { return r.addresses.Lookup(name) }
func (r *mapResolver) CodeID(name string) (uint64, bool)  { return r.codeIDs.Lookup(name) }

func TestParseTemplate(t *testing.T) {
	testCases := []struct {
		Name         string
		Input        interface{}
		ExpectedKind TemplateKind
		ExpectedRef  string
	}{
		{Name: "literal string", Input: "Art NFT", ExpectedKind: TemplateLiteral},
		{Name: "literal number", Input: 10, ExpectedKind: TemplateLiteral},
		{Name: "address reference", Input: "__governance", ExpectedKind: TemplateAddressRef, ExpectedRef: "governance"},
		{Name: "code id reference", Input: "$$dao_members", ExpectedKind: TemplateCodeIDRef, ExpectedRef: "dao_members"},
		{Name: "single underscore is literal", Input: "_governance", ExpectedKind: TemplateLiteral},
		{Name: "object", Input: map[string]interface{}{"a": "b"}, ExpectedKind: TemplateObject},
		{Name: "list", Input: []interface{}{"a"}, ExpectedKind: TemplateList},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tc.Input)
			require.NoError(t, err)
			assert.Equal(t, tc.ExpectedKind, tmpl.Kind)
			assert.Equal(t, tc.ExpectedRef, tmpl.Ref)
		})
	}
}

func TestParseTemplateEmptyReference(t *testing.T) {
	_, err := ParseTemplate(map[string]interface{}{"owner": "__"})
	assert.Regexp(t, "owner: empty address reference", err)

	_, err = ParseTemplate([]interface{}{"$$"})
	assert.Regexp(t, `\[0\]: empty code id reference`, err)
}

func TestResolveTemplate(t *testing.T) {
	tmpl, err := ParseTemplate(map[string]interface{}{
		"owner":                    "__governance",
		"identityservice_contract": "__identityservice",
		"art_nft_code_id":          "$$cw721_metadata_onchain",
		"art_nft_name":             "Art NFT",
		"admins":                   []interface{}{"__governance", "jmes1literal"},
	})
	require.NoError(t, err)

	r := &mapResolver{
		addresses: AddressDocument{"governance": "jmes1gov", "identityservice": "jmes1ids"},
		codeIDs:   CodeIDDocument{"cw721_metadata_onchain": 7},
	}
	resolved, err := tmpl.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"owner":                    "jmes1gov",
		"identityservice_contract": "jmes1ids",
		"art_nft_code_id":          uint64(7),
		"art_nft_name":             "Art NFT",
		"admins":                   []interface{}{"jmes1gov", "jmes1literal"},
	}, resolved)

	assert.Equal(t, []string{"governance", "identityservice"}, tmpl.References())
	assert.Equal(t, []string{"cw721_metadata_onchain"}, tmpl.CodeIDReferences())
}

func TestResolveTemplateUnresolved(t *testing.T) {
	tmpl := Object(map[string]*Template{
		"nested": Object(map[string]*Template{"dealer": AddressRef("art_dealer")}),
	})
	_, err := tmpl.Resolve(&mapResolver{addresses: AddressDocument{}, codeIDs: CodeIDDocument{}})
	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "art_dealer", unresolved.Contract)
	assert.Equal(t, "$.nested.dealer", unresolved.Path)
	assert.Regexp(t, "referenced contract not yet deployed", err)
}

func TestResolveTemplateEmptyAddressIsUnresolved(t *testing.T) {
	_, err := AddressRef("governance").Resolve(&mapResolver{addresses: AddressDocument{"governance": ""}})
	assert.Error(t, err)
}

func TestTemplateYAMLAndJSON(t *testing.T) {
	src := `
owner: __governance
proposal_required_percentage: 10
dao_members_code_id: "$$dao_members"
`
	var tmpl Template
	require.NoError(t, yaml.Unmarshal([]byte(src), &tmpl))
	assert.Equal(t, TemplateObject, tmpl.Kind)
	assert.Equal(t, TemplateAddressRef, tmpl.Fields["owner"].Kind)
	assert.Equal(t, TemplateCodeIDRef, tmpl.Fields["dao_members_code_id"].Kind)

	b, err := json.Marshal(&tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"__governance","proposal_required_percentage":10,"dao_members_code_id":"$$dao_members"}`, string(b))

	var fromJSON Template
	require.NoError(t, json.Unmarshal(b, &fromJSON))
	assert.Equal(t, []string{"governance"}, fromJSON.References())
}

func TestTemplateYAMLUnquotedCodeIDRef(t *testing.T) {
	src := `
art_nft_code_id: $$cw721_metadata_onchain
codes: [$$dao_members, $$dao_multisig]
`
	var tmpl Template
	require.NoError(t, yaml.Unmarshal([]byte(src), &tmpl))
	assert.Equal(t, TemplateCodeIDRef, tmpl.Fields["art_nft_code_id"].Kind)
	assert.Equal(t, "cw721_metadata_onchain", tmpl.Fields["art_nft_code_id"].Ref)
	assert.Equal(t, []string{"cw721_metadata_onchain", "dao_members", "dao_multisig"}, tmpl.CodeIDReferences())
}

func TestTxResultAttribute(t *testing.T) {
	result := &TxResult{
		TxHash: "ABCD",
		Events: []*Event{
			{Type: "message", Attributes: []*Attribute{{Key: "sender", Value: "jmes1deployer"}}},
			{Type: "store_code", Attributes: []*Attribute{{Key: "code_id", Value: "12"}}},
		},
	}
	v, err := result.Attribute("store_code", "code_id")
	assert.NoError(t, err)
	assert.Equal(t, "12", v)

	_, err = result.Attribute("instantiate", "_contract_address")
	var missing *MissingAttributeError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "ABCD", missing.TxHash)

	var nilResult *TxResult
	_, err = nilResult.Attribute("store_code", "code_id")
	assert.Error(t, err)
}

func TestWiredContracts(t *testing.T) {
	n := &Network{
		GovernanceRoot: "governance",
		Contracts: []*ContractConfig{
			{Name: "governance"}, {Name: "identityservice"}, {Name: "art_dealer", Label: "Art Dealer"},
		},
	}
	assert.Equal(t, []string{"identityservice", "art_dealer"}, n.WiredContracts())
	n.Wiring = &WiringConfig{Msg: "set_contract", Contracts: []string{"art_dealer"}}
	assert.Equal(t, []string{"art_dealer"}, n.WiredContracts())
	assert.Equal(t, "Art Dealer", n.GetContract("art_dealer").GetLabel())
	assert.Equal(t, "governance", n.GetContract("governance").GetLabel())
	assert.Nil(t, n.GetContract("missing"))
}
