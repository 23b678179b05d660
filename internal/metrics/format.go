package metrics

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display renders v the way the scorecards show it: "$1,234.56", "12.34%",
// "3:05" or "1,234".
func Display(v float64, unit Unit) string {
	p := message.NewPrinter(language.AmericanEnglish)
	switch unit {
	case UnitMoney:
		return p.Sprintf("$%.2f", v)
	case UnitPercent:
		return fmt.Sprintf("%.2f%%", v)
	case UnitDuration:
		return Duration(v)
	}
	if v == math.Trunc(v) {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.2f", v)
}

// Duration formats seconds as m:ss.
func Duration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int64(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// info is the secondary line under a scorecard value.
func info(key string, value float64, n int, acc *Accumulator) string {
	sums := acc.Sums
	switch key {
	case "Spend", "Sessions", "Sales":
		return fmt.Sprintf("%d records", n)
	case "Clicks":
		if sums["Impressions"] > 0 {
			return fmt.Sprintf("%.2f%% CTR", Formulas["CTR"].Eval(acc))
		}
	case "Conversions":
		if sums["Clicks"] > 0 {
			return fmt.Sprintf("%.2f%% rate", Formulas["ConversionRate"].Eval(acc))
		}
	case "CPC":
		if sums["Clicks"] > 0 {
			return fmt.Sprintf("%s clicks", Display(sums["Clicks"], UnitCount))
		}
	case "CostPerConversion":
		if sums["Conversions"] > 0 {
			return fmt.Sprintf("%s convs", Display(sums["Conversions"], UnitCount))
		}
	case "Users":
		if sums["Sessions"] > 0 && value > 0 {
			return fmt.Sprintf("%.2f sessions/user", sums["Sessions"]/value)
		}
	case "BounceRate":
		if sums["Sessions"] > 0 {
			return fmt.Sprintf("%d bounces", int64(math.Round(sums["Sessions"]*value/100)))
		}
	case "Leads":
		if sums["Sales"] > 0 {
			return fmt.Sprintf("%.2f leads per sale", sums["Leads"]/sums["Sales"])
		}
	case "Downloads":
		if sums["Leads"] > 0 && sums["Downloads"] > 0 {
			return fmt.Sprintf("%.1f%% converted", sums["Leads"]/sums["Downloads"]*100)
		}
	}
	return ""
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
