package types

import (
	"context"
	"testing"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/stretchr/testify/assert"
)

func TestInstantiateModeParse(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []InstantiateMode{InstantiateModeResume, InstantiateModeRedeploy} {
		parsed, err := fftypes.FFEnumParseString(ctx, InstantiateModeType, mode.String())
		assert.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	assert.Equal(t, []interface{}{"resume", "redeploy"}, fftypes.FFEnumValues(InstantiateModeType))

	_, err := fftypes.FFEnumParseString(ctx, InstantiateModeType, "fresh")
	assert.Error(t, err)
}
