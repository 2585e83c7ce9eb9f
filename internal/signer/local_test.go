package signer_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyfeloopinc/interop-relayer/internal/signer"
)

func TestNewLocal_AddressMatchesTheKeysPublicKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	s := signer.NewLocal(key)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())
}

func TestLocalSigner_SignTxProducesAValidSignatureForItsChainID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s := signer.NewLocal(key)

	chainID := big.NewInt(1337)
	to := s.Address()
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    0,
		GasPrice: big.NewInt(1),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(0),
	})

	signed, err := s.SignTx(context.Background(), tx, chainID)
	require.NoError(t, err)

	signerType := types.LatestSignerForChainID(chainID)
	recovered, err := types.Sender(signerType, signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)
}
