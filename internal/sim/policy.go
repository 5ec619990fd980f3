// Package sim drives the demo agents: on a timer it picks a plausible next
// action for the team (claiming tasks, posting progress, moving work to
// review, flipping presence, chatting) and applies it through the same
// coordination service the HTTP API uses.
package sim

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
)

// Snapshot is the board state a policy decides from.
type Snapshot struct {
	Agents []*domain.Agent
	Tasks  []*domain.Task
}

type ActionKind string

const (
	ActionClaim    ActionKind = "claim"
	ActionProgress ActionKind = "progress"
	ActionReview   ActionKind = "review"
	ActionStatus   ActionKind = "status"
	ActionChat     ActionKind = "chat"
)

// Action is one step a policy wants taken. Fields are populated per kind:
// Claim and Review carry AgentID and TaskID, Progress additionally carries
// the composed message, Status carries the new presence, Chat carries the
// message only.
type Action struct {
	Kind    ActionKind
	AgentID string
	TaskID  uuid.UUID
	Status  domain.AgentStatus
	Message string
}

// Policy picks the next action for the team, or nil to sit this tick out.
type Policy interface {
	Next(snap Snapshot) *Action
}

// RandomPolicy reproduces the demo team's behaviour: a weighted draw over
// claim (30%), progress chatter (25%), advance to review (15%), presence
// flip (15%) and general chat (15%). A draw whose preconditions are not met
// (no idle agent, nothing claimable) yields nil rather than falling through
// to another action.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(src rand.Source) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(src)}
}

func (p *RandomPolicy) Next(snap Snapshot) *Action {
	roll := p.rng.Float64()

	switch {
	case roll < 0.3:
		return p.claim(snap)
	case roll < 0.55:
		return p.progress(snap)
	case roll < 0.7:
		return p.review(snap)
	case roll < 0.85:
		return p.flipStatus(snap)
	default:
		return p.chat(snap)
	}
}

// claim pairs an unoccupied agent with an unclaimed backlog or todo task,
// preferring tasks whose tags overlap the agent's skills.
func (p *RandomPolicy) claim(snap Snapshot) *Action {
	var idle []*domain.Agent
	for _, a := range snap.Agents {
		if a.Status != domain.AgentStatusOffline && a.CurrentTaskID == nil {
			idle = append(idle, a)
		}
	}

	var open []*domain.Task
	for _, t := range snap.Tasks {
		if t.ClaimedBy == "" && (t.Column == domain.ColumnTodo || t.Column == domain.ColumnBacklog) {
			open = append(open, t)
		}
	}

	if len(idle) == 0 || len(open) == 0 {
		return nil
	}

	agent := idle[p.rng.IntN(len(idle))]
	task := open[0]
	for _, candidate := range open {
		if skillsMatch(agent.Skills, candidate.Tags) {
			task = candidate
			break
		}
	}

	return &Action{
		Kind:    ActionClaim,
		AgentID: agent.ID,
		TaskID:  task.ID,
		Message: fmt.Sprintf("Claiming %q - matches my %s expertise.", task.Title, agent.Role),
	}
}

func (p *RandomPolicy) progress(snap Snapshot) *Action {
	var busy []*domain.Agent
	for _, a := range snap.Agents {
		if a.CurrentTaskID != nil {
			busy = append(busy, a)
		}
	}
	if len(busy) == 0 {
		return nil
	}

	agent := busy[p.rng.IntN(len(busy))]
	task := findTask(snap.Tasks, *agent.CurrentTaskID)
	if task == nil {
		return nil
	}

	lines := []string{
		fmt.Sprintf("Making progress on %q. Running tests now.", task.Title),
		fmt.Sprintf("%q - about 70%% done. No blockers.", task.Title),
		fmt.Sprintf("Found an edge case in %q. Handling it now.", task.Title),
		fmt.Sprintf("Almost done with %q. Wrapping up documentation.", task.Title),
		fmt.Sprintf("%q - pushing through the final integration steps.", task.Title),
	}

	return &Action{
		Kind:    ActionProgress,
		AgentID: agent.ID,
		TaskID:  task.ID,
		Message: lines[p.rng.IntN(len(lines))],
	}
}

func (p *RandomPolicy) review(snap Snapshot) *Action {
	var claimed []*domain.Task
	for _, t := range snap.Tasks {
		if t.Column == domain.ColumnInProgress && t.ClaimedBy != "" {
			claimed = append(claimed, t)
		}
	}
	if len(claimed) == 0 {
		return nil
	}

	task := claimed[p.rng.IntN(len(claimed))]

	return &Action{
		Kind:    ActionReview,
		AgentID: task.ClaimedBy,
		TaskID:  task.ID,
		Message: fmt.Sprintf("Moved %q to REVIEW. Ready for peer check.", task.Title),
	}
}

// flipStatus rotates an online agent's presence: busy -> online,
// idle -> busy, online -> idle.
func (p *RandomPolicy) flipStatus(snap Snapshot) *Action {
	var online []*domain.Agent
	for _, a := range snap.Agents {
		if a.Status != domain.AgentStatusOffline {
			online = append(online, a)
		}
	}
	if len(online) == 0 {
		return nil
	}

	agent := online[p.rng.IntN(len(online))]

	next := domain.AgentStatusIdle
	switch agent.Status {
	case domain.AgentStatusBusy:
		next = domain.AgentStatusOnline
	case domain.AgentStatusIdle:
		next = domain.AgentStatusBusy
	}

	return &Action{Kind: ActionStatus, AgentID: agent.ID, Status: next}
}

func (p *RandomPolicy) chat(snap Snapshot) *Action {
	lines := []struct {
		agentID string
		msg     string
	}{
		{"axis", "Keep up the pace team. Sprint deadline in 2 days."},
		{"nova", "Anyone need help with frontend? I have capacity."},
		{"forge", "The new API endpoints are performing well. Latency under 50ms."},
		{"sentinel", "All deployments green. Zero downtime on staging."},
		{"cipher", "Security scan complete. No critical vulnerabilities found."},
	}

	// Only speak through agents that actually exist on this deck.
	var present []struct {
		agentID string
		msg     string
	}
	for _, line := range lines {
		if findAgent(snap.Agents, line.agentID) != nil {
			present = append(present, line)
		}
	}
	if len(present) == 0 {
		return nil
	}

	pick := present[p.rng.IntN(len(present))]
	return &Action{Kind: ActionChat, AgentID: pick.agentID, Message: pick.msg}
}

func skillsMatch(skills, tags []string) bool {
	for _, tag := range tags {
		for _, skill := range skills {
			if strings.Contains(skill, tag) || strings.Contains(tag, skill) {
				return true
			}
		}
	}
	return false
}

func findTask(tasks []*domain.Task, id uuid.UUID) *domain.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func findAgent(agents []*domain.Agent, id string) *domain.Agent {
	for _, a := range agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}
