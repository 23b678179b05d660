// Package dataset declares the shape of each CSV dataset the dashboard reads:
// which columns are dimensions, which are metrics, and how the dimension
// filters cascade into each other.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnknownDataset = errors.New("unknown dataset")

const (
	Ads       = "ads"
	Analytics = "analytics"
	Summary   = "summary"
)

// Edge says From constrains the options of To. A symmetric edge also lets
// To constrain From.
type Edge struct {
	From      string
	To        string
	Symmetric bool
}

type Schema struct {
	Name       string
	DateField  string
	Dimensions []string
	Metrics    []string
	Derived    []string // computed metrics offered next to the columns
	Edges      []Edge
}

var builtin = map[string]Schema{
	Ads: {
		Name:       Ads,
		DateField:  "Date",
		Dimensions: []string{"Channel", "Campaign Name", "Ad Set Name", "Ad Name"},
		Metrics:    []string{"Spend", "Impressions", "Clicks", "Conversions", "Reach"},
		Derived:    []string{"CPC", "CPM", "CostPerConversion", "CTR", "ConversionRate"},
		Edges: []Edge{
			{From: "Channel", To: "Campaign Name"},
			{From: "Campaign Name", To: "Ad Set Name"},
			{From: "Ad Set Name", To: "Ad Name"},
		},
	},
	Analytics: {
		Name:       Analytics,
		DateField:  "Date",
		Dimensions: []string{"Country", "City", "Source", "Medium", "Browser", "Device"},
		Metrics:    []string{"Sessions", "Users", "Pageviews", "BounceRate", "AvgSessionDuration"},
		Edges: []Edge{
			{From: "Country", To: "City", Symmetric: true},
			{From: "City", To: "Source"},
			{From: "Source", To: "Medium"},
			{From: "Medium", To: "Browser"},
			{From: "Browser", To: "Device"},
		},
	},
	Summary: {
		Name:       Summary,
		DateField:  "Date",
		Dimensions: []string{"Channel", "Country", "City"},
		Metrics:    []string{"Sales", "Leads", "Downloads", "Phone Enquiries", "Spend"},
		Edges: []Edge{
			{From: "Country", To: "City", Symmetric: true},
		},
	},
}

func Lookup(name string) (Schema, error) {
	s, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return s, nil
}

// Names lists the built-in datasets, sorted.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s Schema) IsDimension(col string) bool { return contains(s.Dimensions, col) }

func (s Schema) IsMetric(col string) bool { return contains(s.Metrics, col) }

// Keys lists every metric a query may ask for: the columns, then the derived ones.
func (s Schema) Keys() []string {
	return append(append([]string(nil), s.Metrics...), s.Derived...)
}

func (s Schema) IsKey(key string) bool { return contains(s.Keys(), key) }

// Upstream returns every ancestor of dim reachable through forward edges.
func (s Schema) Upstream(dim string) []string {
	return s.walk(dim, false)
}

// Constrainers returns the dimensions whose selections narrow dim's options:
// its forward ancestors plus, through symmetric edges, the dimensions it
// constrains.
func (s Schema) Constrainers(dim string) []string {
	return s.walk(dim, true)
}

func (s Schema) walk(dim string, symmetric bool) []string {
	seen := map[string]bool{dim: true}
	queue := []string{dim}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range s.Edges {
			var next string
			switch {
			case e.To == cur:
				next = e.From
			case symmetric && e.Symmetric && e.From == cur:
				next = e.To
			default:
				continue
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return s.ordered(out)
}

// Order returns the dimensions in dependency order: every dimension comes
// after its forward ancestors, ties keep declaration order.
func (s Schema) Order() []string {
	depth := make(map[string]int, len(s.Dimensions))
	for _, d := range s.Dimensions {
		depth[d] = len(s.Upstream(d))
	}
	out := append([]string(nil), s.Dimensions...)
	sort.SliceStable(out, func(i, j int) bool { return depth[out[i]] < depth[out[j]] })
	return out
}

func (s Schema) ordered(dims []string) []string {
	out := make([]string, 0, len(dims))
	for _, d := range s.Dimensions {
		if contains(dims, d) {
			out = append(out, d)
		}
	}
	return out
}

// ParamKey is the query-string key of a dimension: "Campaign Name" -> "campaign_name".
func ParamKey(dim string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(dim)), " ", "_")
}

// Dimension resolves a query key or a case-insensitive column name.
func (s Schema) Dimension(key string) (string, bool) {
	k := ParamKey(key)
	for _, d := range s.Dimensions {
		if ParamKey(d) == k {
			return d, true
		}
	}
	return "", false
}

// Label is the display label of a column: "campaign name" -> "Campaign Name".
func Label(col string) string {
	// a Caser is stateful, one per call
	caser := cases.Title(language.AmericanEnglish, cases.NoLower)
	return caser.String(strings.ReplaceAll(strings.TrimSpace(col), "_", " "))
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
