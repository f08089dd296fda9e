package resolve

import (
	"sort"
	"strings"
	"time"

	"github.com/teranos/palette/entity"
)

// Context bonuses
const (
	sameClientBonus   = 10.0
	assignedToBonus   = 5.0
	createdByBonus    = 3.0
	liveStatusBonus   = 2.0
	sameDayBonus      = 5.0
	sameWeekBonus     = 3.0
	sameMonthBonus    = 1.0
	recentWeekWindow  = 7 * 24 * time.Hour
	recentMonthWindow = 30 * 24 * time.Hour
)

var liveStatuses = map[string]bool{"open": true, "active": true, "pending": true}

// Candidate is a scored search hit.
type Candidate struct {
	Entity     entity.Entity `json:"entity"`
	Similarity float64       `json:"similarity"`
	Score      float64       `json:"score"`
}

// Similarity is the best field similarity of e against query across the
// type's searchable fields.
func Similarity(query string, e entity.Entity) float64 {
	best := 0.0
	for _, f := range e.Type.Fields() {
		if s := FieldSimilarity(query, e.Field(f)); s > best {
			best = s
		}
	}
	return best
}

// ContextBonus rewards records tied to the caller's situation.
func ContextBonus(e entity.Entity, rctx entity.Context) float64 {
	bonus := 0.0
	if rctx.HasClient() && e.ClientKey() == rctx.SelectedClientID {
		bonus += sameClientBonus
	}
	if rctx.HasUser() && e.AssignedTo == rctx.UserID {
		bonus += assignedToBonus
	}
	if rctx.HasUser() && e.CreatedBy == rctx.UserID {
		bonus += createdByBonus
	}
	if liveStatuses[strings.ToLower(strings.TrimSpace(e.Status))] {
		bonus += liveStatusBonus
	}
	return bonus
}

// RecencyBonus rewards records touched today, this week or this month.
func RecencyBonus(e entity.Entity, now time.Time) float64 {
	touched := e.Touched()
	if touched.IsZero() {
		return 0
	}
	touched = touched.In(now.Location())

	ny, nm, nd := now.Date()
	ty, tm, td := touched.Date()
	if ny == ty && nm == tm && nd == td {
		return sameDayBonus
	}
	age := now.Sub(touched)
	switch {
	case age <= recentWeekWindow:
		return sameWeekBonus
	case age <= recentMonthWindow:
		return sameMonthBonus
	}
	return 0
}

// score builds a candidate; weight scales similarity only.
func score(query string, e entity.Entity, rctx entity.Context, now time.Time, weight float64) Candidate {
	sim := Similarity(query, e)
	return Candidate{
		Entity:     e,
		Similarity: sim,
		Score:      sim*weight + ContextBonus(e, rctx) + RecencyBonus(e, now),
	}
}

// rank sorts by descending score; ties keep their input order.
func rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}
