package activity

import "time"

// Rewindow shifts a series recorded relative to originalStart so that it is
// relative to currentStart, and keeps only the points inside
// [0, currentEnd-currentStart].
func Rewindow(graph []Point, originalStart, currentStart, currentEnd int64) []Point {
	offset := currentStart - originalStart
	window := currentEnd - currentStart

	out := make([]Point, 0, len(graph))
	for _, p := range graph {
		shifted := p.Timestamp - offset
		if shifted < 0 || shifted > window {
			continue
		}
		out = append(out, Point{Timestamp: shifted, Value: p.Value})
	}
	return out
}

// Gridlines returns GridlineCount evenly spaced clock labels from start to
// end inclusive. Timestamps are epoch milliseconds.
func Gridlines(start, end int64, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	step := float64(end-start) / float64(GridlineCount-1)

	labels := make([]string, GridlineCount)
	for i := range labels {
		ts := start + int64(step*float64(i))
		if i == GridlineCount-1 {
			ts = end
		}
		labels[i] = time.UnixMilli(ts).In(loc).Format("15:04")
	}
	return labels
}

// BuildChart re-windows the series and computes the gridline labels for the
// window [start, end].
func BuildChart(graph []Point, originalStart, start, end int64, loc *time.Location) Chart {
	return Chart{
		Start:     start,
		End:       end,
		Points:    Rewindow(graph, originalStart, start, end),
		Gridlines: Gridlines(start, end, loc),
	}
}
