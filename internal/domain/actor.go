package domain

// Actor identifies who performs a handoff: a registered agent, or the human
// operator driving the dashboard. The human operator has no row in the agent
// table and must never be looked up or mutated there; modeling it as a
// distinct case (rather than a magic string in agent-id fields) keeps those
// lookups impossible by construction.
type Actor struct {
	agentID string
	human   bool
}

const humanActorID = "human"

// AgentActor returns the actor for a registered agent id.
func AgentActor(id string) Actor {
	return Actor{agentID: id}
}

// HumanActor returns the human-operator actor.
func HumanActor() Actor {
	return Actor{human: true}
}

// ParseActor maps the wire representation ("human" or an agent id) to an
// Actor. The empty string parses as an absent agent actor.
func ParseActor(s string) Actor {
	if s == humanActorID {
		return HumanActor()
	}
	return AgentActor(s)
}

// IsHuman reports whether the actor is the human operator.
func (a Actor) IsHuman() bool { return a.human }

// IsAgent reports whether the actor references a registered agent.
func (a Actor) IsAgent() bool { return !a.human && a.agentID != "" }

// AgentID returns the agent id, or the empty string for the human operator.
func (a Actor) AgentID() string {
	if a.human {
		return ""
	}
	return a.agentID
}

// String returns the wire representation: the agent id, or "human".
func (a Actor) String() string {
	if a.human {
		return humanActorID
	}
	return a.agentID
}
