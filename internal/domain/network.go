package domain

import (
	"fmt"
	"strings"
)

// Network — сеть Bitcoin, с которой работает дашборд.
type Network string

const (
	NetworkBitcoin Network = "bitcoin" // mainnet
	NetworkTestnet Network = "testnet"
	NetworkSignet  Network = "signet"
	NetworkRegtest Network = "regtest"
)

// ParseNetwork принимает каноничные имена и распространенные алиасы mainnet.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bitcoin", "mainnet", "main":
		return NetworkBitcoin, nil
	case "testnet", "testnet3", "test":
		return NetworkTestnet, nil
	case "signet":
		return NetworkSignet, nil
	case "regtest":
		return NetworkRegtest, nil
	}
	return "", fmt.Errorf("unknown bitcoin network %q", s)
}

func (n Network) String() string { return string(n) }

// UnmarshalText используется и JSON-декодером, и хуком mapstructure в конфиге.
func (n *Network) UnmarshalText(text []byte) error {
	parsed, err := ParseNetwork(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (n Network) MarshalText() ([]byte, error) {
	return []byte(n), nil
}
