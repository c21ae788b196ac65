package segment

import (
	"fmt"
	"sort"
	"strings"
)

// Board owns the full-session envelope and the ordered period and drill lists
// of one recording. Bounds are always read from Full, never copied into the
// child segments.
type Board struct {
	Full    Segment   `json:"full_session"`
	Periods []Segment `json:"periods"`
	Drills  []Segment `json:"drills"`
}

// EditBounds is the legal range for a segment's start and end edits.
type EditBounds struct {
	StartMin int64 `json:"start_min"`
	StartMax int64 `json:"start_max"`
	EndMin   int64 `json:"end_min"`
	EndMax   int64 `json:"end_max"`
	Disabled bool  `json:"disabled"`
}

// Edit sets one or both endpoints of a segment. Nil fields are left unchanged.
type Edit struct {
	StartTimestamp *int64
	EndTimestamp   *int64
}

// NewBoard creates a board whose unlocked envelope spans [start, end].
func NewBoard(start, end int64) *Board {
	full := New(0, FullSessionName, "", KindFullSession, false)
	full.StartTimestamp = ptr(start)
	full.EndTimestamp = ptr(end)
	return &Board{Full: full}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{Full: b.Full.clone()}
	for _, seg := range b.Periods {
		out.Periods = append(out.Periods, seg.clone())
	}
	for _, seg := range b.Drills {
		out.Drills = append(out.Drills, seg.clone())
	}
	return out
}

// Restore rebuilds drills from previously stored segments and normalizes the
// board. Stored periods replace seeded ones by name; seeded periods missing
// from storage are kept empty.
func (b *Board) Restore(stored []Segment) {
	b.Drills = nil
	for _, seg := range stored {
		switch seg.Kind {
		case KindPeriod:
			b.restorePeriod(seg.clone())
		case KindDrill:
			b.Drills = append(b.Drills, seg.clone())
		}
	}
	b.Normalize()
}

func (b *Board) restorePeriod(seg Segment) {
	for i := range b.Periods {
		if b.Periods[i].Name == seg.Name {
			seg.ID = b.Periods[i].ID
			b.Periods[i] = seg
			return
		}
	}
	b.Periods = append(b.Periods, seg)
}

// SeedPeriods appends one empty, non-deletable period per name.
func (b *Board) SeedPeriods(names []string) {
	for _, name := range names {
		b.Periods = append(b.Periods, New(b.nextID(), name, "", KindPeriod, false))
	}
}

// FullStart returns the envelope start.
func (b *Board) FullStart() int64 {
	return *b.Full.StartTimestamp
}

// FullEnd returns the envelope end.
func (b *Board) FullEnd() int64 {
	return *b.Full.EndTimestamp
}

// Segments returns periods followed by drills.
func (b *Board) Segments() []Segment {
	all := make([]Segment, 0, len(b.Periods)+len(b.Drills))
	all = append(all, b.Periods...)
	all = append(all, b.Drills...)
	return all
}

// Get returns a copy of the segment with the given kind and id.
func (b *Board) Get(kind Kind, id int) (Segment, error) {
	if kind == KindFullSession {
		return b.Full, nil
	}
	list, i, err := b.find(kind, id)
	if err != nil {
		return Segment{}, err
	}
	return (*list)[i], nil
}

// Bounds computes the legal edit range of a period or drill from its current
// neighbours.
func (b *Board) Bounds(kind Kind, id int) (EditBounds, error) {
	list, i, err := b.find(kind, id)
	if err != nil {
		return EditBounds{}, err
	}
	return b.boundsAt(*list, i), nil
}

func (b *Board) boundsAt(list []Segment, i int) EditBounds {
	seg := list[i]

	startMin := b.FullStart()
	if i > 0 && list[i-1].EndTimestamp != nil {
		startMin = *list[i-1].EndTimestamp
	}

	endMax := b.FullEnd()
	if i+1 < len(list) && list[i+1].StartTimestamp != nil {
		endMax = *list[i+1].StartTimestamp - Minute
	}

	startMax := endMax - Minute
	if seg.EndTimestamp != nil {
		startMax = *seg.EndTimestamp - Minute
	}

	endMin := startMin + Minute
	if seg.StartTimestamp != nil {
		endMin = *seg.StartTimestamp + Minute
	}

	disabled := b.FullEnd()-startMin < Minute
	if i > 0 && list[i-1].EndTimestamp == nil {
		disabled = true
	}

	return EditBounds{
		StartMin: startMin,
		StartMax: startMax,
		EndMin:   endMin,
		EndMax:   endMax,
		Disabled: disabled,
	}
}

// CanAppend reports whether a new drill may be appended. The envelope must be
// locked and at least one minute must remain after the last segment end.
func (b *Board) CanAppend() bool {
	if !b.Full.Locked {
		return false
	}
	lastEnd, ok := b.lastEnd()
	if !ok {
		return true
	}
	return b.FullEnd()-lastEnd >= Minute
}

// AppendDrill adds an unlocked drill that starts at the last segment end (or
// the envelope start) and provisionally ends at the envelope end.
func (b *Board) AppendDrill(name, label string) (Segment, error) {
	if !b.CanAppend() {
		return Segment{}, ErrAppendNotAllowed
	}

	id := b.nextID()
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("drill%d", id)
	}

	start := b.FullStart()
	if lastEnd, ok := b.lastEnd(); ok {
		start = lastEnd
	}

	drill := New(id, name, label, KindDrill, true)
	drill.StartTimestamp = ptr(start)
	drill.EndTimestamp = ptr(b.FullEnd())
	b.Drills = append(b.Drills, drill)
	return drill, nil
}

// AddPeriod appends an empty, deletable period such as overtime.
func (b *Board) AddPeriod(name, label string) (Segment, error) {
	if strings.TrimSpace(name) == "" {
		return Segment{}, fmt.Errorf("%w: period name required", ErrInvalidKind)
	}
	period := New(b.nextID(), name, label, KindPeriod, true)
	b.Periods = append(b.Periods, period)
	return period, nil
}

// UpdateSegment applies an edit to a period or drill after checking it
// against the computed bounds.
func (b *Board) UpdateSegment(kind Kind, id int, edit Edit) (Segment, error) {
	list, i, err := b.find(kind, id)
	if err != nil {
		return Segment{}, err
	}
	seg := (*list)[i]
	if seg.Locked {
		return Segment{}, ErrSegmentLocked
	}

	bounds := b.boundsAt(*list, i)
	if bounds.Disabled {
		return Segment{}, ErrSegmentDisabled
	}

	start := seg.StartTimestamp
	if edit.StartTimestamp != nil {
		start = ptr(*edit.StartTimestamp)
	}
	end := seg.EndTimestamp
	if edit.EndTimestamp != nil {
		end = ptr(*edit.EndTimestamp)
	}

	// Moving both endpoints at once only keeps the neighbour limits.
	startMax, endMin := bounds.StartMax, bounds.EndMin
	if edit.StartTimestamp != nil && edit.EndTimestamp != nil {
		startMax = bounds.EndMax - Minute
		endMin = *start + Minute
	}
	if edit.StartTimestamp != nil {
		if *start < bounds.StartMin || *start > startMax {
			return Segment{}, fmt.Errorf("%w: start %d not in [%d, %d]", ErrOutOfBounds, *start, bounds.StartMin, startMax)
		}
	}
	if edit.EndTimestamp != nil {
		if *end < endMin || *end > bounds.EndMax {
			return Segment{}, fmt.Errorf("%w: end %d not in [%d, %d]", ErrOutOfBounds, *end, endMin, bounds.EndMax)
		}
	}

	seg.StartTimestamp = start
	seg.EndTimestamp = end
	(*list)[i] = seg
	b.reconcile()
	return seg, nil
}

// SetLocked confirms or reopens a period or drill. Only complete segments can
// be locked.
func (b *Board) SetLocked(kind Kind, id int, locked bool) (Segment, error) {
	list, i, err := b.find(kind, id)
	if err != nil {
		return Segment{}, err
	}
	if locked && !(*list)[i].IsComplete() {
		return Segment{}, ErrIncomplete
	}
	(*list)[i].Locked = locked
	return (*list)[i], nil
}

// DeleteSegment removes a deletable period or drill. Neighbour bounds are
// derived from adjacency, so the remaining segments pick up the new layout.
func (b *Board) DeleteSegment(kind Kind, id int) error {
	list, i, err := b.find(kind, id)
	if err != nil {
		return err
	}
	if !(*list)[i].Deletable {
		return ErrNotDeletable
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	b.reconcile()
	return nil
}

// SetFullSessionBounds trims or extends the unlocked envelope. Every complete
// segment must stay inside the new bounds.
func (b *Board) SetFullSessionBounds(start, end int64) error {
	if b.Full.Locked {
		return ErrFullSessionLocked
	}
	if end-start < Minute {
		return fmt.Errorf("%w: full session shorter than one minute", ErrOutOfBounds)
	}
	if minStart, ok := b.minStart(); ok && start > minStart {
		return fmt.Errorf("%w: start %d after segment start %d", ErrOutOfBounds, start, minStart)
	}
	if maxEnd, ok := b.maxEnd(); ok && end < maxEnd {
		return fmt.Errorf("%w: end %d before segment end %d", ErrOutOfBounds, end, maxEnd)
	}
	b.Full.StartTimestamp = ptr(start)
	b.Full.EndTimestamp = ptr(end)
	return nil
}

// SetFullSessionLocked locks or unlocks the envelope. Locking pins the bounds
// to the earliest segment start and latest segment end; afterwards segment
// edits no longer move them.
func (b *Board) SetFullSessionLocked(locked bool) {
	b.Full.Locked = locked
	if !locked {
		b.reconcile()
		return
	}
	if minStart, ok := b.minStart(); ok {
		b.Full.StartTimestamp = ptr(minStart)
	}
	if maxEnd, ok := b.maxEnd(); ok {
		b.Full.EndTimestamp = ptr(maxEnd)
	}
}

// Normalize restores ordering and envelope invariants after loading segments
// from storage.
func (b *Board) Normalize() {
	sortIfComplete(b.Periods)
	sortIfComplete(b.Drills)
	b.reconcile()
}

// reconcile grows the unlocked envelope to cover every segment.
func (b *Board) reconcile() {
	if b.Full.Locked {
		return
	}
	if minStart, ok := b.minStart(); ok && minStart < b.FullStart() {
		b.Full.StartTimestamp = ptr(minStart)
	}
	if maxEnd, ok := b.maxEnd(); ok && maxEnd > b.FullEnd() {
		b.Full.EndTimestamp = ptr(maxEnd)
	}
}

func (b *Board) find(kind Kind, id int) (*[]Segment, int, error) {
	var list *[]Segment
	switch kind {
	case KindPeriod:
		list = &b.Periods
	case KindDrill:
		list = &b.Drills
	case KindFullSession:
		return nil, 0, ErrInvalidKind
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	for i := range *list {
		if (*list)[i].ID == id {
			return list, i, nil
		}
	}
	return nil, 0, ErrSegmentNotFound
}

func (b *Board) nextID() int {
	next := 0
	for _, seg := range b.Segments() {
		if seg.ID+1 > next {
			next = seg.ID + 1
		}
	}
	return next
}

func (b *Board) lastEnd() (int64, bool) {
	return b.maxEnd()
}

func (b *Board) minStart() (int64, bool) {
	var earliest int64
	found := false
	for _, seg := range b.Segments() {
		if seg.StartTimestamp == nil {
			continue
		}
		if !found || *seg.StartTimestamp < earliest {
			earliest = *seg.StartTimestamp
			found = true
		}
	}
	return earliest, found
}

func (b *Board) maxEnd() (int64, bool) {
	var latest int64
	found := false
	for _, seg := range b.Segments() {
		if seg.EndTimestamp == nil {
			continue
		}
		if !found || *seg.EndTimestamp > latest {
			latest = *seg.EndTimestamp
			found = true
		}
	}
	return latest, found
}

func sortIfComplete(list []Segment) {
	for _, seg := range list {
		if seg.StartTimestamp == nil {
			return
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return *list[i].StartTimestamp < *list[j].StartTimestamp
	})
}
