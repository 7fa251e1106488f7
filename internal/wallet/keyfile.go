package wallet

import (
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/hydra-onchain/chainwatch/pkg/crypto"
)

// LoadOrCreateKeyFile reads the fuel wallet's signing key from path,
// base58-encoded the way this layer persists secrets at rest, and
// generates and writes a fresh one if the file does not yet exist.
func LoadOrCreateKeyFile(path string) (*crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return decodeKeyFile(data)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("wallet: read keyfile: %w", err)
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("wallet: generate fuel key: %w", err)
	}
	if err := writeKeyFile(path, key); err != nil {
		return nil, err
	}
	return key, nil
}

func decodeKeyFile(data []byte) (*crypto.PrivateKey, error) {
	encoded := strings.TrimSpace(string(data))
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("wallet: decode keyfile: %w", err)
	}
	key, err := crypto.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("wallet: load keyfile: %w", err)
	}
	return key, nil
}

func writeKeyFile(path string, key *crypto.PrivateKey) error {
	encoded := base58.Encode(key.Serialize())
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0600); err != nil {
		return fmt.Errorf("wallet: write keyfile: %w", err)
	}
	return nil
}
