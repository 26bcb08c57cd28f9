package model

// PromptMessage is one entry in the composed message list.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Exemplar is a fixed input/output few-shot pair.
type Exemplar struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// PromptPayload is the ephemeral prompt constructed for a single request:
// system text, ordered few-shot exemplars, and the ordered message list.
// Never stored; regenerated on every call.
type PromptPayload struct {
	System   string          `json:"system"`
	FewShot  []Exemplar      `json:"few_shot"`
	Messages []PromptMessage `json:"messages"`
}
