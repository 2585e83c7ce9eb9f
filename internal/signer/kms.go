package signer

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/asn1"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// kmsSigner signs with an AWS KMS asymmetric ECC_SECG_P256K1 signing key.
type kmsSigner struct {
	client    *kms.Client
	keyID     string
	pubKey    *ecdsa.PublicKey
	address   common.Address
}

// NewKMS resolves the AWS KMS public key for keyID and returns a Signer
// backed by KMS's Sign API.
func NewKMS(ctx context.Context, keyID string) (Signer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := kms.NewFromConfig(cfg)

	out, err := client.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(keyID)})
	if err != nil {
		return nil, errors.Wrap(err, "get kms public key")
	}
	pubKey, err := parseKMSPublicKey(out.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "parse kms public key")
	}

	return &kmsSigner{
		client:  client,
		keyID:   keyID,
		pubKey:  pubKey,
		address: crypto.PubkeyToAddress(*pubKey),
	}, nil
}

func (s *kmsSigner) Address() common.Address { return s.address }

func (s *kmsSigner) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(chainID)
	hash := signer.Hash(tx)

	out, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyID),
		Message:          hash[:],
		MessageType:      kmstypes.MessageTypeDigest,
		SigningAlgorithm: kmstypes.SigningAlgorithmSpecEcdsaSha256,
	})
	if err != nil {
		return nil, errors.Wrap(err, "kms sign")
	}

	sig, err := recoverableSignature(hash[:], out.Signature, s.pubKey)
	if err != nil {
		return nil, errors.Wrap(err, "derive recoverable signature from kms signature")
	}

	signed, err := tx.WithSignature(signer, sig)
	if err != nil {
		return nil, errors.Wrap(err, "apply kms signature")
	}
	return signed, nil
}

// asn1ECDSASignature mirrors the DER-encoded ECDSA-Sig-Value KMS returns.
type asn1ECDSASignature struct {
	R, S *big.Int
}

// recoverableSignature converts a DER-encoded ECDSA signature from KMS into
// the 65-byte [R || S || V] form go-ethereum expects, by trying both
// recovery IDs and picking the one whose recovered public key matches
// expected. This is the standard pattern for using a KMS ECDSA key (which
// does not return a recovery id) as an Ethereum transaction signer.
func recoverableSignature(hash []byte, der []byte, expected *ecdsa.PublicKey) ([]byte, error) {
	var parsed asn1ECDSASignature
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshal der signature")
	}

	s := parsed.S
	// secp256k1 requires s to be in the lower half of the curve order;
	// KMS does not canonicalize this, so flip it if necessary.
	halfOrder := new(big.Int).Rsh(crypto.S256().Params().N, 1)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(crypto.S256().Params().N, s)
	}

	rBytes := leftPad32(parsed.R.Bytes())
	sBytes := leftPad32(s.Bytes())

	for recID := byte(0); recID < 2; recID++ {
		candidate := make([]byte, 65)
		copy(candidate[0:32], rBytes)
		copy(candidate[32:64], sBytes)
		candidate[64] = recID

		recoveredPub, err := crypto.SigToPub(hash, candidate)
		if err != nil {
			continue
		}
		if recoveredPub.X.Cmp(expected.X) == 0 && recoveredPub.Y.Cmp(expected.Y) == 0 {
			return candidate, nil
		}
	}
	return nil, errors.New("could not derive recovery id matching kms public key")
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}

// asn1SubjectPublicKeyInfo is the minimal SPKI shape KMS's GetPublicKey
// response is encoded as.
type asn1SubjectPublicKeyInfo struct {
	Algorithm asn1.RawValue
	PublicKey asn1.BitString
}

func parseKMSPublicKey(der []byte) (*ecdsa.PublicKey, error) {
	var spki asn1SubjectPublicKeyInfo
	if _, err := asn1.Unmarshal(der, &spki); err != nil {
		return nil, errors.Wrap(err, "unmarshal spki")
	}
	x, y := elliptic.Unmarshal(crypto.S256(), spki.PublicKey.Bytes)
	if x == nil {
		return nil, errors.New("invalid secp256k1 public key encoding")
	}
	return &ecdsa.PublicKey{Curve: crypto.S256(), X: x, Y: y}, nil
}
