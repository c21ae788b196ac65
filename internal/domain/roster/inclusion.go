package roster

// SeedInclusion matches every roster player whose stored tag appears in the
// recording. Unmatched recording tags are left for manual assignment.
func SeedInclusion(recorded map[string]TagSummary, players []Player) Inclusion {
	inc := make(Inclusion)
	for _, p := range players {
		if p.Tag == "" {
			continue
		}
		if _, ok := recorded[p.Tag]; !ok {
			continue
		}
		inc[p.Tag] = Assignment{PlayerID: p.ID, Included: true}
	}
	return inc
}

// AvailableChoices lists the players that may be assigned to tagID: the
// current assignee first, then every player not assigned to another tag and
// not carrying a stored tag that belongs to a different recording tag.
func AvailableChoices(tagID string, players []Player, recorded map[string]TagSummary, inc Inclusion) []Player {
	assigned := make(map[string]string, len(inc))
	for tag, a := range inc {
		if a.PlayerID != "" {
			assigned[a.PlayerID] = tag
		}
	}

	var choices []Player
	current := inc[tagID].PlayerID
	if current != "" {
		if p, ok := FindPlayer(players, current); ok {
			choices = append(choices, p)
		}
	}

	for _, p := range players {
		if p.ID == current {
			continue
		}
		if _, taken := assigned[p.ID]; taken {
			continue
		}
		if p.Tag != "" && p.Tag != tagID {
			if _, recordedTag := recorded[p.Tag]; recordedTag {
				continue
			}
		}
		choices = append(choices, p)
	}
	return choices
}

// SetAssignment returns a copy of inc with tagID assigned to playerID and
// included.
func SetAssignment(inc Inclusion, tagID, playerID string) Inclusion {
	out := inc.clone()
	out[tagID] = Assignment{PlayerID: playerID, Included: true}
	return out
}

// SetIncluded returns a copy of inc with the inclusion flag of tagID changed.
// Tags without an assigned player are left untouched and ok is false.
func SetIncluded(inc Inclusion, tagID string, included bool) (Inclusion, bool) {
	a, exists := inc[tagID]
	if !exists || a.PlayerID == "" {
		return inc, false
	}
	out := inc.clone()
	a.Included = included
	out[tagID] = a
	return out, true
}

// FindPlayer looks a player up by id.
func FindPlayer(players []Player, id string) (Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

func (inc Inclusion) clone() Inclusion {
	out := make(Inclusion, len(inc)+1)
	for k, v := range inc {
		out[k] = v
	}
	return out
}
