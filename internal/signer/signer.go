// Package signer abstracts the relayer's admin signing key (C8) behind an
// interface with two implementations: a local ECDSA key parsed from
// --private-key, and an AWS KMS-backed key selected by --kms-key-arn. Both
// implementations only ever sign administrative transactions and the
// paymaster funding transfer — never a materialized type-C transaction,
// whose custom signature field is a provenance payload, not a cryptographic
// signature.
package signer

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer signs ordinary (administrative) transactions for one address.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// localSigner wraps a raw ECDSA key parsed from the CLI's --private-key
// flag.
type localSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocal builds a Signer from a parsed private key.
func NewLocal(key *ecdsa.PrivateKey) Signer {
	return &localSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func (s *localSigner) Address() common.Address { return s.address }

func (s *localSigner) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(chainID)
	signed, err := types.SignTx(tx, signer, s.key)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction with local key")
	}
	return signed, nil
}
