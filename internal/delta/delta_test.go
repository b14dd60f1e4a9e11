package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickflash/internal/domain"
)

func tick(ts int64, qty int64, side domain.Side) domain.TickEvent {
	return domain.TickEvent{Key: "AAA", Timestamp: ts, Price: 10, Quantity: qty, Side: side, SideSource: domain.SideSourceUptick}
}

func TestSeries_SignedAccumulation(t *testing.T) {
	events := []domain.TickEvent{
		tick(1200, 5, domain.SideBuy),
		tick(1700, 3, domain.SideSell),
		tick(1900, 7, domain.SideUnknown), // contributes 0
		tick(2100, 4, domain.SideBuy),
	}

	got := Series(events, 0)
	require.Len(t, got, 2)

	// Descending by second.
	assert.Equal(t, Bucket{Second: 2, Buy: 4, Sell: 0, Net: 4}, got[0])
	assert.Equal(t, Bucket{Second: 1, Buy: 5, Sell: 3, Net: 2}, got[1])
}

func TestSeries_BucketKeyIsFloorOfEventSecond(t *testing.T) {
	// ts=1500 lands in bucket floor(1500/1000)=1.
	got := Series([]domain.TickEvent{tick(1500, 3, domain.SideBuy)}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Second)
	assert.Equal(t, int64(3), got[0].Net)
}

func TestSeries_TruncatesToLimit(t *testing.T) {
	var events []domain.TickEvent
	for s := int64(0); s < 30; s++ {
		events = append(events, tick(s*1000, 1, domain.SideBuy))
	}

	got := Series(events, 5)
	require.Len(t, got, 5)
	assert.Equal(t, int64(29), got[0].Second)
	assert.Equal(t, int64(25), got[4].Second)

	// Zero limit falls back to the default display depth.
	assert.Len(t, Series(events, 0), DefaultBucketLimit)
}

func TestSeries_Idempotent(t *testing.T) {
	events := []domain.TickEvent{
		tick(1000, 5, domain.SideBuy),
		tick(1500, 3, domain.SideSell),
		tick(2500, 2, domain.SideBuy),
	}

	first := Series(events, 0)
	second := Series(events, 0)
	assert.Equal(t, first, second)
}

func TestSeries_Empty(t *testing.T) {
	assert.Empty(t, Series(nil, 0))
}

func TestApply_MinQuantity(t *testing.T) {
	events := []domain.TickEvent{
		tick(1000, 50, domain.SideBuy),
		tick(1000, 150, domain.SideBuy),
	}
	got := Apply(events, Filter{MinQuantity: 100})
	require.Len(t, got, 1)
	assert.Equal(t, int64(150), got[0].Quantity)
}

func TestApply_HideUnknown(t *testing.T) {
	unresolved := tick(1000, 10, domain.SideUnknown)
	unresolved.SideSource = domain.SideSourceNone

	// A midpoint tie: side UNKNOWN but the book was consulted. Hidden too:
	// the toggle hides unknown sides, whatever their provenance.
	tie := tick(1000, 10, domain.SideUnknown)
	tie.SideSource = domain.SideSourceTick

	events := []domain.TickEvent{tick(1000, 10, domain.SideBuy), unresolved, tie}
	got := Apply(events, Filter{HideUnknown: true})
	require.Len(t, got, 1)
	assert.Equal(t, domain.SideBuy, got[0].Side)
}

func TestApply_EdgesOnly(t *testing.T) {
	atAsk := tick(1000, 10, domain.SideBuy)
	atAsk.Edge = domain.EdgeAsk
	atBid := tick(1000, 10, domain.SideSell)
	atBid.Edge = domain.EdgeBid
	between := tick(1000, 10, domain.SideBuy)

	got := Apply([]domain.TickEvent{atAsk, atBid, between}, Filter{EdgesOnly: true})
	assert.Len(t, got, 2)
}

func TestApply_PreservesOrder(t *testing.T) {
	events := []domain.TickEvent{
		tick(3000, 10, domain.SideBuy),
		tick(2000, 10, domain.SideSell),
		tick(1000, 10, domain.SideBuy),
	}
	got := Apply(events, Filter{})
	require.Len(t, got, 3)
	assert.Equal(t, int64(3000), got[0].Timestamp)
	assert.Equal(t, int64(1000), got[2].Timestamp)
}

func TestBiggest(t *testing.T) {
	events := []domain.TickEvent{
		tick(3000, 10, domain.SideBuy),
		tick(2000, 500, domain.SideSell),
		tick(1000, 200, domain.SideBuy),
	}

	got := Biggest(events, 2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(500), got[0].Quantity)
	assert.Equal(t, int64(200), got[1].Quantity)

	assert.Nil(t, Biggest(events, 0))
	assert.Len(t, Biggest(events, 10), 3)
}
