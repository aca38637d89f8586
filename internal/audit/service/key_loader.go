package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeyLoader resolves the audit master key from configuration.
type KeyLoader interface {
	// Load decodes the base64 key. When keyURI is set the decoded bytes are treated as a
	// KMS ciphertext and unwrapped through the keeper at keyURI.
	// Supports gcpkms://, awskms://, azurekeyvault://, hashivault:// and base64key://.
	Load(ctx context.Context, keyURI, encodedKey string) ([]byte, error)
}

type kmsKeyLoader struct{}

// NewKeyLoader creates a KeyLoader backed by gocloud.dev/secrets.
func NewKeyLoader() KeyLoader {
	return &kmsKeyLoader{}
}

func (k *kmsKeyLoader) Load(ctx context.Context, keyURI, encodedKey string) ([]byte, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("audit signing key is not configured")
	}

	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audit signing key: %w", err)
	}

	if keyURI == "" {
		return raw, nil
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer keeper.Close() //nolint:errcheck

	plain, err := keeper.Decrypt(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap audit signing key: %w", err)
	}
	return plain, nil
}
