package ir

// CaptureResolution records what the checker learned about one capture
// reference in a stanza body. The execution stage uses the two indices to
// pull the capture's nodes out of a match without looking names up again.
type CaptureResolution struct {
	Node               int        `json:"node"` // arena id of the capture node
	Name               string     `json:"name"`
	StanzaCaptureIndex int        `json:"stanza_capture_index"`
	FileCaptureIndex   int        `json:"file_capture_index"`
	Quantifier         Quantifier `json:"quantifier"`
}

// StanzaAnnotation is the side table for a single stanza.
type StanzaAnnotation struct {
	Index                     int                 `json:"index"`
	FullMatchFileCaptureIndex int                 `json:"full_match_file_capture_index"`
	Captures                  []CaptureResolution `json:"captures"`
}

// Annotations is the checker's output: one StanzaAnnotation per stanza, in
// file order.
type Annotations struct {
	Stanzas []StanzaAnnotation `json:"stanzas"`

	byNode map[int]CaptureResolution
}

// NewAnnotations returns an empty side table sized for n stanzas.
func NewAnnotations(n int) *Annotations {
	return &Annotations{
		Stanzas: make([]StanzaAnnotation, 0, n),
		byNode:  make(map[int]CaptureResolution),
	}
}

// AddStanza appends the annotation for the next stanza and returns it for
// filling in.
func (a *Annotations) AddStanza(index, fullMatchFileCaptureIndex int) *StanzaAnnotation {
	a.Stanzas = append(a.Stanzas, StanzaAnnotation{
		Index:                     index,
		FullMatchFileCaptureIndex: fullMatchFileCaptureIndex,
		Captures:                  []CaptureResolution{},
	})
	return &a.Stanzas[len(a.Stanzas)-1]
}

// Resolve records a capture resolution for the stanza at position stanza.
func (a *Annotations) Resolve(stanza int, res CaptureResolution) {
	if a.byNode == nil {
		a.byNode = make(map[int]CaptureResolution)
	}
	a.Stanzas[stanza].Captures = append(a.Stanzas[stanza].Captures, res)
	a.byNode[res.Node] = res
}

// Capture returns the resolution recorded for the capture node with the
// given arena id.
func (a *Annotations) Capture(node int) (CaptureResolution, bool) {
	if a.byNode == nil {
		a.reindex()
	}
	res, ok := a.byNode[node]
	return res, ok
}

// CaptureCount returns the number of resolved capture references across
// all stanzas.
func (a *Annotations) CaptureCount() int {
	n := 0
	for _, s := range a.Stanzas {
		n += len(s.Captures)
	}
	return n
}

// reindex rebuilds the node lookup after the table was decoded from JSON or
// read back from the store.
func (a *Annotations) reindex() {
	a.byNode = make(map[int]CaptureResolution, a.CaptureCount())
	for _, s := range a.Stanzas {
		for _, c := range s.Captures {
			a.byNode[c.Node] = c
		}
	}
}

// CanonicalMap converts the table to plain values for MarshalCanonical,
// for embedding in larger canonical documents.
func (a *Annotations) CanonicalMap() map[string]any {
	stanzas := make([]any, len(a.Stanzas))
	for i, s := range a.Stanzas {
		captures := make([]any, len(s.Captures))
		for j, c := range s.Captures {
			captures[j] = map[string]any{
				"node":                 c.Node,
				"name":                 c.Name,
				"stanza_capture_index": c.StanzaCaptureIndex,
				"file_capture_index":   c.FileCaptureIndex,
				"quantifier":           c.Quantifier.String(),
			}
		}
		stanzas[i] = map[string]any{
			"index":                         s.Index,
			"full_match_file_capture_index": s.FullMatchFileCaptureIndex,
			"captures":                      captures,
		}
	}
	return map[string]any{"stanzas": stanzas}
}

// MarshalCanonical returns the RFC 8785 form of the table. Golden files and
// AnnotationsHash are computed from it.
func (a *Annotations) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(a.CanonicalMap())
}
