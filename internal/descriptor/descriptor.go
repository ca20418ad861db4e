// Package descriptor models the renderable form descriptors exchanged with
// the challenge UI. The orchestrator only rearranges pages, buttons and
// groups; it never interprets how a hint is rendered.
package descriptor

import (
	"encoding/json"

	"paygate/kit/errs"
)

type Kind string

const (
	KindPage   Kind = "page"
	KindButton Kind = "button"
	KindGroup  Kind = "group"
)

type Action string

const (
	ActionSubmit    Action = "submit"
	ActionMoveFirst Action = "moveFirst"
	ActionMoveNext  Action = "moveNext"
)

// Submission order for linked resources relative to the base form.
const SubmissionBeforeBase = "beforeBase"

// Save-button ids, in lookup order. Different form templates name their
// save-triggering button differently.
var saveButtonIDs = []string{"saveButton", "saveNextButton", "saveConfirmButton"}

const (
	HintChallengePage = "challengePage"
	HintBackButton    = "backButton"
	HintNextButton    = "nextButton"
	HintBackSaveGroup = "backSaveGroup"
)

// Hint is a single display node. Kind discriminates; Members nest.
type Hint struct {
	ID          string            `json:"hintId"`
	Kind        Kind              `json:"kind"`
	Action      Action            `json:"action,omitempty"`
	Content     string            `json:"displayContent,omitempty"`
	Layout      string            `json:"layoutOrientation,omitempty"`
	SubmitGroup bool              `json:"isSubmitGroup,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Members     []*Hint           `json:"members,omitempty"`
}

func (h *Hint) AddMember(m *Hint) {
	h.Members = append(h.Members, m)
}

func (h *Hint) RemoveMember(id string) bool {
	for i, m := range h.Members {
		if m.ID == id {
			h.Members = append(h.Members[:i], h.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Resource is one displayable form: an ordered list of pages plus resources
// linked to submit alongside it.
type Resource struct {
	Identity        map[string]string `json:"identity,omitempty"`
	Pages           []*Hint           `json:"displayPages"`
	Linked          []*Resource       `json:"linkedResources,omitempty"`
	Secondary       bool              `json:"isSecondaryResource,omitempty"`
	IgnoreErrors    bool              `json:"ignoreErrors,omitempty"`
	SubmissionOrder string            `json:"submissionOrder,omitempty"`
}

// FindHint searches every page depth-first and returns the first hint with
// the given id.
func (r *Resource) FindHint(id string) *Hint {
	for _, p := range r.Pages {
		if found := findIn(p, id); found != nil {
			return found
		}
	}
	return nil
}

func findIn(h *Hint, id string) *Hint {
	if h.ID == id {
		return h
	}
	for _, m := range h.Members {
		if found := findIn(m, id); found != nil {
			return found
		}
	}
	return nil
}

// ParentSubmitGroup returns the submit group that directly contains the hint
// with the given id, or nil when the hint is absent or not inside one.
func (r *Resource) ParentSubmitGroup(id string) *Hint {
	for _, p := range r.Pages {
		if g := parentSubmitIn(p, id); g != nil {
			return g
		}
	}
	return nil
}

func parentSubmitIn(h *Hint, id string) *Hint {
	for _, m := range h.Members {
		if m.ID == id && h.SubmitGroup {
			return h
		}
		if g := parentSubmitIn(m, id); g != nil {
			return g
		}
	}
	return nil
}

// SaveButton returns the form's save-triggering button, trying each known id
// in order.
func (r *Resource) SaveButton() *Hint {
	for _, id := range saveButtonIDs {
		if h := r.FindHint(id); h != nil {
			return h
		}
	}
	return nil
}

// InsertPageAt inserts a page so that it renders at the given index. An index
// past the end appends.
func (r *Resource) InsertPageAt(index int, page *Hint) {
	if index < 0 {
		index = 0
	}
	if index >= len(r.Pages) {
		r.Pages = append(r.Pages, page)
		return
	}
	r.Pages = append(r.Pages[:index], append([]*Hint{page}, r.Pages[index:]...)...)
}

// MakeSecondary marks the resource as submitting in support of a base form
// rather than standing alone.
func (r *Resource) MakeSecondary() {
	r.Secondary = true
}

// SetErrorHandlingToIgnore lets the base form submit even when this resource
// fails. Used for optional challenges.
func (r *Resource) SetErrorHandlingToIgnore() {
	r.IgnoreErrors = true
}

// AddLinked attaches linked to every resource with before-base submission
// order: the linked resource submits before the form it accompanies.
func AddLinked(resources []*Resource, linked *Resource) {
	linked.SubmissionOrder = SubmissionBeforeBase
	for _, r := range resources {
		r.Linked = append(r.Linked, linked)
	}
}

// Parse decodes the raw descriptor JSON a challenge backend returns. Both a
// single resource object and an array are accepted.
func Parse(raw json.RawMessage) ([]*Resource, error) {
	var many []*Resource
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one Resource
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, errs.Integration("descriptor", "unmarshal challenge descriptor")
	}
	return []*Resource{&one}, nil
}
