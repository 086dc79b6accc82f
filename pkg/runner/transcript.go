package runner

import "context"

// Role classifies a transcript message.
type Role string

const (
	// RoleTell is a status note the program surfaced to the agent.
	RoleTell Role = "tell"
	// RoleQuestion is a question the program asked the agent.
	RoleQuestion Role = "question"
	// RoleReply is the agent's answer to the preceding question.
	RoleReply Role = "reply"
)

// Message is a single entry in the conversation between a program and its
// agent.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript accumulates the tell/ask history of a run. An Oracle answers
// each question against the transcript so far, which is what lets a
// program build up context before asking.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Tell records a status note.
func (t *Transcript) Tell(text string) {
	t.messages = append(t.messages, Message{Role: RoleTell, Text: text})
}

// Question records a question posed to the agent.
func (t *Transcript) Question(text string) {
	t.messages = append(t.messages, Message{Role: RoleQuestion, Text: text})
}

// Reply records the agent's answer.
func (t *Transcript) Reply(text string) {
	t.messages = append(t.messages, Message{Role: RoleReply, Text: text})
}

// Messages returns a copy of the transcript so far.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// OracleFunc answers a program's question given the transcript so far.
// Hosts typically back this with an LLM call; tests use a canned function.
type OracleFunc func(ctx context.Context, transcript []Message, question string) (string, error)
