package model

// Ancestor is one hop in a process chain.
type Ancestor struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	PPID int    `json:"ppid"`
}

// GitContext describes the repository a process was started from.
type GitContext struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
}

func (g GitContext) String() string {
	if g.Branch == "" {
		return g.Repo
	}
	return g.Repo + " (" + g.Branch + ")"
}

// ProcessAncestry is the causality answer for one pid. Chain[0] is the
// queried process and the last element is the root reached by the walk.
type ProcessAncestry struct {
	Chain    []Ancestor      `json:"chain"`
	Source   SourceType      `json:"source"`
	Warnings []HealthWarning `json:"warnings,omitempty"`
	Git      *GitContext     `json:"git,omitempty"`
	Unit     string          `json:"unit,omitempty"`
}

func (a ProcessAncestry) PID() int {
	if len(a.Chain) == 0 {
		return 0
	}
	return a.Chain[0].PID
}

// RootToTarget returns the chain reversed, root first.
func (a ProcessAncestry) RootToTarget() []Ancestor {
	out := make([]Ancestor, len(a.Chain))
	for i, p := range a.Chain {
		out[len(a.Chain)-1-i] = p
	}
	return out
}
