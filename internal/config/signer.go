package config

import (
	"context"

	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
	"github.com/lyfeloopinc/interop-relayer/internal/signer"
	"github.com/lyfeloopinc/interop-relayer/internal/utils"
)

// buildSigner selects the KMS-backed Signer when --kms-key-arn is set,
// otherwise falls back to the local --private-key signer.
func buildSigner(ctx context.Context, flags *Flags) (signer.Signer, error) {
	if flags.KMSKeyARN != "" {
		s, err := signer.NewKMS(ctx, flags.KMSKeyARN)
		if err != nil {
			return nil, relayerr.NewConfigError("build kms signer", err)
		}
		return s, nil
	}
	if flags.PrivateKeyHex == "" {
		return nil, relayerr.NewConfigError("one of --private-key or --kms-key-arn is required", nil)
	}
	key, err := utils.ParsePrivateKey(flags.PrivateKeyHex)
	if err != nil {
		return nil, relayerr.NewConfigError("parse --private-key", err)
	}
	return signer.NewLocal(key), nil
}
