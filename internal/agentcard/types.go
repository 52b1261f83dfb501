package agentcard

import "time"

// AgentCard is the discovery document an agent serves at its well-known path.
type AgentCard struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	URL             string   `json:"url"`
	ProtocolVersion string   `json:"protocolVersion,omitempty"`
	Capabilities    []string `json:"capabilities,omitempty"`
}

// ResolvedAgentCard is a fetched card plus resolution metadata.
type ResolvedAgentCard struct {
	AgentCard
	SourceURL  string    `json:"source_url"`
	ResolvedAt time.Time `json:"resolved_at"`
}
