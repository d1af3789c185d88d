package warehouses

import "strconv"

// Stats counts depots by status.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Passive int `json:"passive"`
}

// Compute counts list.
func Compute(list []Warehouse) Stats {
	s := Stats{Total: len(list)}
	for _, w := range list {
		switch w.Status {
		case StatusActive:
			s.Active++
		case StatusPassive:
			s.Passive++
		}
	}
	return s
}

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// StatCard is one tile of the stat grid above the depot list.
type StatCard struct {
	Title    string
	Value    string
	Interval string
	Trend    Trend
	Data     []float64
}

// CapacityUsage is shown until the backend reports real occupancy.
const CapacityUsage = "87%"

var trendSeries = []float64{4, 6, 8, 12, 16, 14, 18, 22, 20, 24, 28, 30}

func scaled(f float64) []float64 {
	out := make([]float64, len(trendSeries))
	for i, v := range trendSeries {
		out[i] = v * f
	}
	return out
}

// StatCards lays out the four tiles of the depot screen.
func (s Stats) StatCards() []StatCard {
	passiveTrend := TrendNeutral
	if s.Passive > 0 {
		passiveTrend = TrendDown
	}
	return []StatCard{
		{Title: "Toplam Depo", Value: strconv.Itoa(s.Total), Interval: "Tüm depolar", Trend: TrendUp, Data: scaled(1)},
		{Title: "Aktif Depolar", Value: strconv.Itoa(s.Active), Interval: "Aktif durumda", Trend: TrendUp, Data: scaled(0.8)},
		{Title: "Pasif Depolar", Value: strconv.Itoa(s.Passive), Interval: "Kullanım dışı", Trend: passiveTrend, Data: scaled(0.2)},
		{Title: "Kapasite Kullanımı", Value: CapacityUsage, Interval: "Ortalama doluluk", Trend: TrendUp, Data: scaled(0.9)},
	}
}

// Sparkline renders Data as SVG polyline points in a w by h box.
func (c StatCard) Sparkline(w, h float64) string {
	if len(c.Data) == 0 {
		return ""
	}
	maxV := c.Data[0]
	for _, v := range c.Data {
		if v > maxV {
			maxV = v
		}
	}
	step := w
	if len(c.Data) > 1 {
		step = w / float64(len(c.Data)-1)
	}
	buf := make([]byte, 0, len(c.Data)*12)
	for i, v := range c.Data {
		y := h
		if maxV > 0 {
			y = h - v/maxV*h
		}
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, float64(i)*step, 'f', 1, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, y, 'f', 1, 64)
	}
	return string(buf)
}
