package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sample() []Opportunity {
	return []Opportunity{
		{Match: "Flamengo vs Palmeiras", Competition: "Brasileirão", Market: "1X2", Sport: "Football", Odds: 2.10, EV: 5, Probability: 0.50, Stake: 3, PotentialReturn: 6.3},
		{Match: "Chiefs vs Bills", Competition: "NFL", Market: "Moneyline", Sport: "NFL", Odds: 1.90, EV: 9, Probability: 0.57, Stake: 2, PotentialReturn: 3.8},
		{Match: "Sinner vs Alcaraz", Competition: "ATP Finals", Market: "Vencedor", Sport: "Tennis", Odds: 2.50, EV: 2, Probability: 0.42, Stake: 1, PotentialReturn: 2.5},
		{Match: "Arsenal vs Chelsea", Competition: "Premier League", Market: "Over 2.5", Sport: "soccer", Odds: 1.80, EV: 5, Probability: 0.60, Stake: 4, PotentialReturn: 7.2},
		{Match: "T1 vs Gen.G", Competition: "LCK", Market: "Mapa 1", Sport: "esports", Odds: 1.70, EV: 3, Probability: 0.62, Stake: 1, PotentialReturn: 1.7},
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want Bucket
	}{
		{"nil defaults to football", nil, BucketFootball},
		{"football", strPtr("Football"), BucketFootball},
		{"soccer", strPtr("Soccer"), BucketFootball},
		{"trim and case", strPtr("  NFL "), BucketNFL},
		{"tennis", strPtr("TENNIS"), BucketTennis},
		{"empty defaults to football", strPtr(""), BucketFootball},
		{"whitespace only is other", strPtr("   "), BucketOther},
		{"other", strPtr("esports"), BucketOther},
		{"basketball", strPtr("NBA"), BucketOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.in))
		})
	}
	assert.Equal(t, Classify(strPtr("Soccer")), Classify(strPtr("Football")))
}

func TestFilter_SportBucketsOnly(t *testing.T) {
	items := sample()
	for _, s := range []SportFilter{SportFootball, SportNFL, SportTennis} {
		out := Filter(items, s, "")
		want, _ := s.bucket()
		require.NotEmpty(t, out, "sport %s", s)
		for _, o := range out {
			assert.Equal(t, want, o.Bucket(), "sport %s item %s", s, o.Match)
		}
	}
	assert.Len(t, Filter(items, SportAll, ""), len(items))
	assert.Len(t, Filter(items, SportFootball, ""), 2)
}

func TestFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	items := sample()

	out := Filter(items, SportAll, "  PREMIER ")
	require.Len(t, out, 1)
	assert.Equal(t, "Arsenal vs Chelsea", out[0].Match)

	out = Filter(items, SportAll, "moneyline")
	require.Len(t, out, 1)
	assert.Equal(t, "Chiefs vs Bills", out[0].Match)

	// bookmaker e esporte não entram na busca
	items[0].Bookmaker = "Pinnacle"
	assert.Empty(t, Filter(items, SportAll, "pinnacle"))
}

func TestFilter_ConjunctiveAndEmptyIsNotNil(t *testing.T) {
	items := sample()

	out := Filter(items, SportNFL, "flamengo")
	assert.NotNil(t, out)
	assert.Empty(t, out)

	assert.NotNil(t, Filter(nil, SportAll, ""))
}

func TestFilter_Idempotent(t *testing.T) {
	items := sample()
	for _, s := range []SportFilter{SportAll, SportFootball, SportNFL, SportTennis} {
		for _, q := range []string{"", "vs", "league", "zzz"} {
			once := Filter(items, s, q)
			assert.Equal(t, once, Filter(once, s, q), "sport=%s q=%q", s, q)
		}
	}
}

func TestFilter_Commutative(t *testing.T) {
	items := sample()
	sportFirst := Filter(Filter(items, SportFootball, ""), SportAll, "vs")
	searchFirst := Filter(Filter(items, SportAll, "vs"), SportFootball, "")
	assert.Equal(t, sportFirst, searchFirst)
}

func TestSort_EVDescIsStable(t *testing.T) {
	items := sample()
	out := Sort(items, SortEVDesc)

	require.Len(t, out, len(items))
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].EV, out[i].EV)
	}
	// Flamengo (ev 5) vem antes de Arsenal (ev 5) na entrada
	assert.Equal(t, "Flamengo vs Palmeiras", out[1].Match)
	assert.Equal(t, "Arsenal vs Chelsea", out[2].Match)
}

func TestSort_Keys(t *testing.T) {
	items := sample()

	byOdds := Sort(items, SortOddsDesc)
	assert.Equal(t, "Sinner vs Alcaraz", byOdds[0].Match)

	byStake := Sort(items, SortStakeAsc)
	assert.Equal(t, 1.0, byStake[0].Stake)
	assert.Equal(t, "Sinner vs Alcaraz", byStake[0].Match) // empate com T1, ordem de entrada
	assert.Equal(t, 4.0, byStake[len(byStake)-1].Stake)

	byProb := Sort(items, SortProbabilityDesc)
	assert.Equal(t, "T1 vs Gen.G", byProb[0].Match)

	assert.Equal(t, Sort(items, SortEVDesc), Sort(items, SortKey("unknown")))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	items := sample()
	before := append([]Opportunity(nil), items...)
	_ = Sort(items, SortOddsDesc)
	assert.Equal(t, before, items)
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, Summary{}, Aggregate(nil))
	assert.Equal(t, Summary{}, Aggregate([]Opportunity{}))

	items := []Opportunity{
		{EV: 5, Stake: 10, PotentialReturn: 20},
		{EV: 9, Stake: 5, PotentialReturn: 11},
		{EV: 2, Stake: 1, PotentialReturn: 3},
	}
	s := Aggregate(Sort(items, SortEVDesc))
	assert.Equal(t, 9.0, s.BestEV)
	assert.InDelta(t, 5.333, s.AvgEV, 0.001)
	assert.Equal(t, 16.0, s.TotalStake)
	assert.Equal(t, 34.0, s.TotalReturn)
}

func TestAggregate_AllNegativeEV(t *testing.T) {
	s := Aggregate([]Opportunity{{EV: -3}, {EV: -1}})
	assert.Equal(t, -1.0, s.BestEV)
	assert.Equal(t, -2.0, s.AvgEV)
}

func TestCountBySport(t *testing.T) {
	c := CountBySport(sample())
	assert.Equal(t, SportCounts{All: 5, Football: 2, NFL: 1, Tennis: 1}, c)
}

func TestParseFilters(t *testing.T) {
	assert.Equal(t, SportNFL, ParseSportFilter("NFL"))
	assert.Equal(t, SportAll, ParseSportFilter(""))
	assert.Equal(t, SportAll, ParseSportFilter("basketball"))
	assert.Equal(t, SortStakeAsc, ParseSortKey("stake_asc"))
	assert.Equal(t, SortEVDesc, ParseSortKey("bogus"))
}
