package activity

// Point is one sample of the activity intensity series. Timestamp is in
// milliseconds relative to the start of the window it belongs to.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// GridlineCount is the number of vertical chart gridlines.
const GridlineCount = 7

// Chart is the activity series of a workspace re-timed to the current
// full-session envelope.
type Chart struct {
	Start     int64    `json:"start"`
	End       int64    `json:"end"`
	Points    []Point  `json:"points"`
	Gridlines []string `json:"gridlines"`
}
