package pool

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/soldexlabs/arbiter/curve"
)

// FeeRatio is a numerator/denominator fee pair from a venue definition.
type FeeRatio struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// FeeStructure is the fee schedule of an AMM venue definition.
type FeeStructure struct {
	TraderFee FeeRatio `json:"traderFee"`
	OwnerFee  FeeRatio `json:"ownerFee"`
}

// TokenInfo describes one side of an AMM pool: the mint, its decimal scale,
// and the vault account holding that side's reserve.
type TokenInfo struct {
	Mint  solana.PublicKey `json:"mint"`
	Scale uint8            `json:"scale"`
	Addr  solana.PublicKey `json:"addr"`
}

// AmmDefinition is the configuration record of an AMM venue, mirroring the
// camelCase pool files published by the venue registries.
type AmmDefinition struct {
	Address  solana.PublicKey     `json:"address"`
	Name     string               `json:"name,omitempty"`
	TokenIDs []solana.PublicKey   `json:"tokenIds"`
	Tokens   map[string]TokenInfo `json:"tokens"`
	Fees     FeeStructure         `json:"feeStructure"`
	// CurveType: 0 = constant product, 2 = stable.
	CurveType uint8  `json:"curveType"`
	Amp       uint64 `json:"amp,omitempty"`
}

// MarketDefinition is the configuration record of an order-book venue.
type MarketDefinition struct {
	OwnAddress   solana.PublicKey `json:"ownAddress"`
	Name         string           `json:"name,omitempty"`
	BaseMint     solana.PublicKey `json:"baseMint"`
	QuoteMint    solana.PublicKey `json:"quoteMint"`
	BaseScale    uint8            `json:"baseScale"`
	QuoteScale   uint8            `json:"quoteScale"`
	BaseVault    solana.PublicKey `json:"baseVault"`
	QuoteVault   solana.PublicKey `json:"quoteVault"`
	RequestQueue solana.PublicKey `json:"requestQueue"`
	EventQueue   solana.PublicKey `json:"eventQueue"`
	Bids         solana.PublicKey `json:"bids"`
	Asks         solana.PublicKey `json:"asks"`
	VaultSigner  solana.PublicKey `json:"vaultSigner"`
	TakerFeeBps  uint64           `json:"takerFeeBps"`
}

// DirKind selects how the definition files in a directory are decoded.
type DirKind string

const (
	DirAmm    DirKind = "amm"
	DirMarket DirKind = "market"
)

// LoadDir reads every .json venue definition in dir and builds pools from
// them. Definitions that cannot form a tradable pool are skipped with a
// warning; an unreadable directory or undecodable file is fatal, since it
// means the venue list itself is broken.
func LoadDir(kind DirKind, dir string, log *zap.Logger) ([]*Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading venue directory %s: %w", dir, err)
	}

	var pools []*Pool
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading venue definition %s: %w", path, err)
		}

		p, err := FromDefinition(kind, raw)
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidDefinition), errors.Is(err, curve.ErrUnsupportedCurveType):
			log.Warn("Skipping venue definition",
				zap.String("path", path),
				zap.Error(err))
			continue
		default:
			return nil, fmt.Errorf("parsing venue definition %s: %w", path, err)
		}
		pools = append(pools, p)
	}
	return pools, nil
}

// FromDefinition decodes a single venue definition into a Pool.
func FromDefinition(kind DirKind, raw []byte) (*Pool, error) {
	switch kind {
	case DirAmm:
		var def AmmDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		return NewAmm(&def)
	case DirMarket:
		var def MarketDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		return NewMarket(&def)
	default:
		return nil, fmt.Errorf("%w: unknown directory kind %q", ErrInvalidDefinition, kind)
	}
}
