package api

// CreateSolveRequest is the body of a request to start a solve session.
type CreateSolveRequest struct {
	Expression string   `json:"expression"`
	Include    []string `json:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
}

// CreateSolveResponse is returned for a new solve session. Token must be given
// as a bearer token to advance or delete the session.
type CreateSolveResponse struct {
	ID      string `json:"id" cbor:"id"`
	Token   string `json:"token" cbor:"token"`
	Display string `json:"display" cbor:"display"`
}

// StepModel is one step of a solve session.
type StepModel struct {
	Number  int      `json:"number" cbor:"number"`
	Display string   `json:"display" cbor:"display"`
	Changes []string `json:"changes" cbor:"changes"`
}

// SolveModel is a solve session with every step taken so far.
type SolveModel struct {
	ID         string      `json:"id" cbor:"id"`
	Expression string      `json:"expression" cbor:"expression"`
	Include    []string    `json:"include,omitempty" cbor:"include,omitempty"`
	Exclude    []string    `json:"exclude,omitempty" cbor:"exclude,omitempty"`
	Display    string      `json:"display" cbor:"display"`
	Done       bool        `json:"done" cbor:"done"`
	Steps      []StepModel `json:"steps" cbor:"steps"`
	Created    string      `json:"created" cbor:"created"`
	Modified   string      `json:"modified" cbor:"modified"`
}

// ChangeModel is a single change made by a step.
type ChangeModel struct {
	Rule        string   `json:"rule" cbor:"rule"`
	Description string   `json:"description" cbor:"description"`
	Inputs      []string `json:"inputs" cbor:"inputs"`
	Result      string   `json:"result" cbor:"result"`
}

// StepResponse is returned after advancing a solve session. An empty Changes
// means the session is done and Step is omitted.
type StepResponse struct {
	Step    *StepModel    `json:"step,omitempty" cbor:"step,omitempty"`
	Changes []ChangeModel `json:"changes" cbor:"changes"`
	Done    bool          `json:"done" cbor:"done"`
}

// EvaluateRequest is the body of a request to compute the value of an
// expression. Bindings maps single-letter variable names to numbers.
type EvaluateRequest struct {
	Expression string            `json:"expression"`
	Bindings   map[string]string `json:"bindings,omitempty"`
}

type EvaluateResponse struct {
	Value string `json:"value" cbor:"value"`
}

// RuleModel describes a rewrite rule.
type RuleModel struct {
	Name     string   `json:"name" cbor:"name"`
	Bucket   string   `json:"bucket" cbor:"bucket"`
	Kinds    []string `json:"kinds" cbor:"kinds"`
	Fallback bool     `json:"fallback" cbor:"fallback"`
}

type InfoModel struct {
	Version struct {
		Server   string `json:"server" cbor:"server"`
		Algestep string `json:"algestep" cbor:"algestep"`
		Grammar  string `json:"grammar" cbor:"grammar"`
	} `json:"version" cbor:"version"`
}
