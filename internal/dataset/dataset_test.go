package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	s, err := Lookup(" Analytics ")
	require.NoError(t, err)
	assert.Equal(t, Analytics, s.Name)

	_, err = Lookup("crm")
	assert.True(t, errors.Is(err, ErrUnknownDataset))
}

func TestUpstreamFollowsForwardEdgesOnly(t *testing.T) {
	s, _ := Lookup(Analytics)

	assert.Empty(t, s.Upstream("Country"))
	assert.Equal(t, []string{"Country"}, s.Upstream("City"))
	assert.Equal(t, []string{"Country", "City", "Source", "Medium", "Browser"}, s.Upstream("Device"))
}

func TestConstrainersIncludeSymmetricPartner(t *testing.T) {
	s, _ := Lookup(Analytics)

	assert.Equal(t, []string{"City"}, s.Constrainers("Country"))
	assert.Equal(t, []string{"Country"}, s.Constrainers("City"))
	assert.Equal(t, []string{"Country", "City"}, s.Constrainers("Source"))

	ads, _ := Lookup(Ads)
	assert.Empty(t, ads.Constrainers("Channel"))
	assert.Equal(t, []string{"Channel", "Campaign Name"}, ads.Constrainers("Ad Set Name"))
}

func TestOrder(t *testing.T) {
	ads, _ := Lookup(Ads)
	assert.Equal(t, []string{"Channel", "Campaign Name", "Ad Set Name", "Ad Name"}, ads.Order())

	sum, _ := Lookup(Summary)
	assert.Equal(t, []string{"Channel", "Country", "City"}, sum.Order())
}

func TestDimensionResolvesParamKeys(t *testing.T) {
	ads, _ := Lookup(Ads)

	d, ok := ads.Dimension("campaign_name")
	assert.True(t, ok)
	assert.Equal(t, "Campaign Name", d)

	d, ok = ads.Dimension("AD SET NAME")
	assert.True(t, ok)
	assert.Equal(t, "Ad Set Name", d)

	_, ok = ads.Dimension("country")
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Campaign Name", Label("campaign_name"))
	assert.Equal(t, "Phone Enquiries", Label("phone enquiries"))
	assert.Equal(t, "AvgSessionDuration", Label("AvgSessionDuration"))
}

func TestKeysAppendDerivedMetrics(t *testing.T) {
	ads, _ := Lookup(Ads)
	keys := ads.Keys()
	assert.Equal(t, "Spend", keys[0])
	assert.True(t, ads.IsKey("CTR"))
	assert.False(t, ads.IsMetric("CTR"))

	ga, _ := Lookup(Analytics)
	assert.Equal(t, ga.Metrics, ga.Keys())
	assert.False(t, ga.IsKey("CPC"))
}
