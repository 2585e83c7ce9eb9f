package config_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyfeloopinc/interop-relayer/internal/config"
)

func TestFlagsValidate_RequiresAtLeastOneRPC(t *testing.T) {
	flags := config.DefaultFlags()
	flags.PrivateKeyHex = "aa"
	err := flags.Validate()
	require.Error(t, err)
}

func TestFlagsValidate_RequiresMatchingRPCAndPriceCounts(t *testing.T) {
	flags := config.DefaultFlags()
	flags.PrivateKeyHex = "aa"
	flags.RPCs = []config.RPCFlag{{URL: "http://a"}, {URL: "http://b"}}
	flags.BaseTokenPricesCents = []int64{100}

	err := flags.Validate()
	require.Error(t, err)
}

func TestFlagsValidate_RequiresASigner(t *testing.T) {
	flags := config.DefaultFlags()
	flags.RPCs = []config.RPCFlag{{URL: "http://a"}}
	flags.BaseTokenPricesCents = []int64{100}

	err := flags.Validate()
	require.Error(t, err)
}

func TestFlagsValidate_AcceptsPrivateKeyOrKMS(t *testing.T) {
	base := config.DefaultFlags()
	base.RPCs = []config.RPCFlag{{URL: "http://a"}}
	base.BaseTokenPricesCents = []int64{100}

	withKey := *base
	withKey.PrivateKeyHex = "aa"
	assert.NoError(t, withKey.Validate())

	withKMS := *base
	withKMS.KMSKeyARN = "arn:aws:kms:us-east-1:000000000000:key/abc"
	assert.NoError(t, withKMS.Validate())
}

// tokensForPaymasterBalance is unexported and config.Build needs a live RPC,
// so this test does not call either; it checks a worked example of the
// arithmetic the ChainConfig.TokensForPaymaster doc states: cents / (cents
// per 1e18) * 1e18.
func TestTokensForPaymasterBalanceArithmetic(t *testing.T) {
	oneE18 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	priceCentsPer1e18 := big.NewInt(200) // $2.00 per whole token
	paymasterBalanceCents := int64(2000) // $20.00 target

	want := new(big.Int).Div(new(big.Int).Mul(big.NewInt(paymasterBalanceCents), oneE18), priceCentsPer1e18)
	assert.Equal(t, big.NewInt(10), new(big.Int).Div(want, oneE18), "20 / 2 = 10 whole tokens")
}
