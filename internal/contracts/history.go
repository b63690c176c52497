package contracts

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// PricePoint is one trading day of OHLCV data for an entity.
// Numeric fields use NaN to mark a value the upstream feed did not supply.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// pricePointJSON is the wire form of PricePoint: NaN travels as null,
// since JSON has no NaN literal.
type pricePointJSON struct {
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open"`
	High   *float64  `json:"high"`
	Low    *float64  `json:"low"`
	Close  *float64  `json:"close"`
	Volume *float64  `json:"volume"`
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricePointJSON{
		Date:   p.Date,
		Open:   nanToNil(p.Open),
		High:   nanToNil(p.High),
		Low:    nanToNil(p.Low),
		Close:  nanToNil(p.Close),
		Volume: nanToNil(p.Volume),
	})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var wire pricePointJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = PricePoint{
		Date:   wire.Date,
		Open:   nilToNaN(wire.Open),
		High:   nilToNaN(wire.High),
		Low:    nilToNaN(wire.Low),
		Close:  nilToNaN(wire.Close),
		Volume: nilToNaN(wire.Volume),
	}
	return nil
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nilToNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// HistorySeries is a price series for one entity over a lookback window.
// Dates are expected to be strictly increasing; callers that cannot
// guarantee ordering should call SortByDate first.
type HistorySeries []PricePoint

// SortByDate sorts the series chronologically ascending
func (s HistorySeries) SortByDate() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Closes returns the close prices in series order
func (s HistorySeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// LatestClose returns the most recent close, or NaN for an empty series
func (s HistorySeries) LatestClose() float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1].Close
}

// HasVolume reports whether the feed supplied volume data at all
func (s HistorySeries) HasVolume() bool {
	for _, p := range s {
		if !math.IsNaN(p.Volume) {
			return true
		}
	}
	return false
}

// PctChanges returns the day-over-day fractional change of the close,
// one element per consecutive pair of points. Empty or single-point
// series yield an empty slice.
func (s HistorySeries) PctChanges() []float64 {
	if len(s) < 2 {
		return nil
	}

	changes := make([]float64, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Close
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(s[i].Close) {
			changes = append(changes, math.NaN())
			continue
		}
		changes = append(changes, (s[i].Close-prev)/prev)
	}
	return changes
}
