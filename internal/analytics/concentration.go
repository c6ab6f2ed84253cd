package analytics

import "math"

// Concentration bands on the Herfindahl-Hirschman index of account shares.
const (
	BandUnconcentrated = "unconcentrated"
	BandModerate       = "moderately_concentrated"
	BandHigh           = "highly_concentrated"
)

// OpexConcentration describes how much of a month's opex sits in its largest
// accounts.
type OpexConcentration struct {
	TopN       int     `json:"top_n"`
	TopShare   float64 `json:"top_share"`
	OtherShare float64 `json:"other_share"`
	HHI        float64 `json:"hhi"`
	Band       string  `json:"band"`
}

// Concentration computes top-N share and HHI over lines, which must be sorted
// largest first as OpexBreakdown returns them. Accounts with a non-positive
// amount are ignored; ok is false when nothing positive remains.
func Concentration(lines []OpexLine, topN int) (OpexConcentration, bool) {
	var total float64
	for _, l := range lines {
		if l.AmountUSD > 0 {
			total += l.AmountUSD
		}
	}
	if total == 0 {
		return OpexConcentration{}, false
	}
	if topN <= 0 || topN > len(lines) {
		topN = len(lines)
	}

	out := OpexConcentration{TopN: topN}
	var top, hhi float64
	for i, l := range lines {
		if l.AmountUSD <= 0 {
			continue
		}
		sh := l.AmountUSD / total
		if i < topN {
			top += sh
		}
		hhi += sh * sh
	}
	out.TopShare = round3(top)
	out.OtherShare = round3(1 - top)
	out.HHI = round3(hhi)
	switch {
	case hhi < 0.15:
		out.Band = BandUnconcentrated
	case hhi < 0.25:
		out.Band = BandModerate
	default:
		out.Band = BandHigh
	}
	return out, true
}

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
