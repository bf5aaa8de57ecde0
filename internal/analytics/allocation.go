package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmanzanog/gainbase/internal/domain"
	"gonum.org/v1/gonum/floats"
)

type Dimension string

const (
	DimensionInstrument Dimension = "instrument"
	DimensionSector     Dimension = "sector"
	DimensionAssetType  Dimension = "asset_type"
	DimensionBroker     Dimension = "broker"
)

const (
	labelUnknown  = "Unknown"
	labelNoBroker = "No Broker"
)

// ParseDimension accepts the API names plus the display names used by the
// spreadsheet ("Company Name", "Asset Type").
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "instrument", "company", "company name", "company_name":
		return DimensionInstrument, nil
	case "sector":
		return DimensionSector, nil
	case "asset_type", "asset type", "assettype":
		return DimensionAssetType, nil
	case "broker":
		return DimensionBroker, nil
	default:
		return "", fmt.Errorf("unknown allocation dimension %q", s)
	}
}

type AllocationSlice struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// ComputeAllocation buckets the current value of open holdings by dim.
// The result is sorted by value, largest first, and is empty when nothing
// of value is held.
func ComputeAllocation(txns []domain.Transaction, snap domain.Snapshot, dim Dimension) []AllocationSlice {
	buckets := make(map[string]float64)
	var order []string

	for _, p := range netPositions(txns) {
		if !p.open() {
			continue
		}
		price, _ := p.price(snap)
		label := dimensionLabel(p, snap, dim)
		if _, seen := buckets[label]; !seen {
			order = append(order, label)
		}
		buckets[label] += p.quantity * price
	}

	values := make([]float64, len(order))
	for i, label := range order {
		values[i] = buckets[label]
	}
	total := floats.Sum(values)
	if total == 0 {
		return []AllocationSlice{}
	}

	out := make([]AllocationSlice, len(order))
	for i, label := range order {
		out[i] = AllocationSlice{
			Label:      label,
			Value:      values[i],
			Percentage: values[i] / total * 100,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func dimensionLabel(p *position, snap domain.Snapshot, dim Dimension) string {
	if dim == DimensionBroker {
		return orDefault(p.last.Broker, labelNoBroker)
	}

	tk, ok := snap.Lookup(p.symbol)
	switch dim {
	case DimensionSector:
		return orDefault(tk.Sector, labelUnknown)
	case DimensionAssetType:
		return orDefault(tk.AssetType, labelUnknown)
	default:
		if !ok {
			return p.symbol
		}
		return orDefault(tk.CompanyName, labelUnknown)
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
