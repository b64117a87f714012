package wallet

import (
	"fmt"
	"math/big"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/stagiralabs/agora-go/internal/asset"
	"gopkg.in/yaml.v3"
)

// walletValidate checks wallet documents after decoding
var walletValidate = validator.New()

// Holding is one position: a quantity of a single claim
type Holding struct {
	Label    string
	Quantity *big.Rat
	Asset    asset.Asset
}

// Wallet is a named collection of holdings
type Wallet struct {
	ID           string
	Organization string
	Holdings     []Holding
}

// holdingYAML is the file form of a holding: quantity as a rational string,
// asset in canonical encoding.
type holdingYAML struct {
	Label    string `yaml:"label" validate:"required"`
	Quantity string `yaml:"quantity" validate:"required"`
	Asset    string `yaml:"asset" validate:"required"`
}

// walletYAML is the file form of a wallet
type walletYAML struct {
	ID           string        `yaml:"id" validate:"required"`
	Organization string        `yaml:"organization"`
	Holdings     []holdingYAML `yaml:"holdings" validate:"dive"`
}

// Parse decodes and validates a wallet document
func Parse(data []byte) (*Wallet, error) {
	var wire walletYAML
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if err := walletValidate.Struct(&wire); err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}

	w := &Wallet{
		ID:           wire.ID,
		Organization: wire.Organization,
		Holdings:     make([]Holding, 0, len(wire.Holdings)),
	}
	for i, h := range wire.Holdings {
		quantity, err := asset.ParseRat(h.Quantity)
		if err != nil {
			return nil, fmt.Errorf("holding %d (%s): quantity: %w", i, h.Label, err)
		}
		claim, err := asset.Decode(h.Asset)
		if err != nil {
			return nil, fmt.Errorf("holding %d (%s): %w", i, h.Label, err)
		}
		w.Holdings = append(w.Holdings, Holding{
			Label:    h.Label,
			Quantity: quantity,
			Asset:    claim,
		})
	}
	return w, nil
}

// Load reads a wallet from a YAML file
func Load(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("wallet %s: %w", path, err)
	}
	return w, nil
}
