package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// RosterAgent is an agent the recommender can hand tickets to.
type RosterAgent struct {
	ID     string
	Name   string
	Skills []string
}

// ErrNoAgentAvailable is returned when the roster is empty.
var ErrNoAgentAvailable = errors.New("no agent available")

// pendingWeight discounts tickets nobody has started working on yet.
const pendingWeight = 0.5

// Recommend picks the least loaded agent, preferring agents whose skills
// match the ticket's tags or category. Ties keep roster order.
func (d *TicketDesk) Recommend(ctx context.Context, p domain.SmartAssignPayload) (domain.SmartAssignRecommendation, error) {
	if len(d.roster) == 0 {
		return domain.SmartAssignRecommendation{}, ErrNoAgentAvailable
	}
	all, err := d.tickets.All(ctx)
	if err != nil {
		return domain.SmartAssignRecommendation{}, err
	}
	manual := map[string]int{}
	pending := map[string]int{}
	for _, t := range all {
		if t.AssignedAgentID == nil || !isOpen(t.Status) {
			continue
		}
		if t.Status == domain.TicketStatusPending {
			pending[*t.AssignedAgentID]++
		} else {
			manual[*t.AssignedAgentID]++
		}
	}

	wanted := append([]string{}, p.Tags...)
	if p.Category != "" {
		wanted = append(wanted, p.Category)
	}

	var (
		best      domain.SmartAssignRecommendation
		bestScore float64
		found     bool
	)
	for _, agent := range d.roster {
		matched := matchSkills(agent.Skills, wanted)
		load := float64(manual[agent.ID]) + pendingWeight*float64(pending[agent.ID])
		// each matched skill is worth one open ticket
		score := load - float64(len(matched))
		if found && score >= bestScore {
			continue
		}
		found = true
		bestScore = score
		best = domain.SmartAssignRecommendation{
			AgentID:         agent.ID,
			AgentName:       agent.Name,
			MatchedTags:     matched,
			ManualSessions:  manual[agent.ID],
			PendingSessions: pending[agent.ID],
			LoadScore:       load,
		}
	}
	best.Reason = fmt.Sprintf("lowest load (%.1f)", best.LoadScore)
	if len(best.MatchedTags) > 0 {
		best.Reason += "; skills: " + strings.Join(best.MatchedTags, ", ")
	}
	return best, nil
}

func matchSkills(skills, wanted []string) []string {
	matched := []string{}
	for _, w := range wanted {
		for _, s := range skills {
			if strings.EqualFold(s, w) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}
