// Package store is the normalized data core for GoPrep.
// It holds the topic → sub-topic → question hierarchy as flat id-keyed maps
// plus explicit order arrays, with snapshot-based undo/redo on top.
// This is the unified data layer replacing the NgRx store in TypeScript.
package store

// Difficulty is the optional rating attached to a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// SchemaVersion tags the persisted shape so future schema changes can be
// migrated. Absent a migration rule the loader treats a shape as current.
const SchemaVersion = 1

// Topic is a top-level category. It owns its sub-topics through SubTopicIDs;
// the slice is the ordering, there is no separate sort key.
type Topic struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SubTopicIDs []string `json:"subTopicIds"`
}

// SubTopic belongs to exactly one topic at a time. TopicID is the
// back-reference; ownership itself lives in the parent's SubTopicIDs.
type SubTopic struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TopicID     string   `json:"topicId"`
	QuestionIDs []string `json:"questionIds"`
}

// Question is a leaf entry. Difficulty and Link are optional.
type Question struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Link       string     `json:"link,omitempty"`
}

// State is the full entity graph: three normalized collections, the root
// topic order, and the cosmetic expand/collapse maps. The expand maps are
// never required to be consistent with the entity maps.
type State struct {
	TopicsByID    map[string]*Topic    `json:"topicsById"`
	SubTopicsByID map[string]*SubTopic `json:"subTopicsById"`
	QuestionsByID map[string]*Question `json:"questionsById"`
	TopicOrder    []string             `json:"topicOrder"`

	ExpandedTopics    map[string]bool `json:"expandedTopics"`
	ExpandedSubTopics map[string]bool `json:"expandedSubTopics"`
}

// NewState returns an empty, fully-allocated state.
func NewState() State {
	return State{
		TopicsByID:        make(map[string]*Topic),
		SubTopicsByID:     make(map[string]*SubTopic),
		QuestionsByID:     make(map[string]*Question),
		TopicOrder:        []string{},
		ExpandedTopics:    make(map[string]bool),
		ExpandedSubTopics: make(map[string]bool),
	}
}

// =============================================================================
// Deep copy
// =============================================================================

// Snapshots and persisted exports must not share structure with the live
// graph, so every container is cloned field by field. Plain structural copy
// keeps the cost proportional to hierarchy size.

func (t *Topic) clone() *Topic {
	c := *t
	c.SubTopicIDs = append([]string{}, t.SubTopicIDs...)
	return &c
}

func (st *SubTopic) clone() *SubTopic {
	c := *st
	c.QuestionIDs = append([]string{}, st.QuestionIDs...)
	return &c
}

func (q *Question) clone() *Question {
	c := *q
	return &c
}

// Clone returns a deep, independent copy of the state.
func (s State) Clone() State {
	c := NewState()
	for id, t := range s.TopicsByID {
		c.TopicsByID[id] = t.clone()
	}
	for id, st := range s.SubTopicsByID {
		c.SubTopicsByID[id] = st.clone()
	}
	for id, q := range s.QuestionsByID {
		c.QuestionsByID[id] = q.clone()
	}
	c.TopicOrder = append(c.TopicOrder, s.TopicOrder...)
	for id, v := range s.ExpandedTopics {
		c.ExpandedTopics[id] = v
	}
	for id, v := range s.ExpandedSubTopics {
		c.ExpandedSubTopics[id] = v
	}
	return c
}

// =============================================================================
// Persisted shape
// =============================================================================

// PersistedState is the durable subset of the store: the three entity maps,
// the topic order, and the expand maps. History and transient flags are
// deliberately excluded.
type PersistedState struct {
	Version           int                  `json:"version"`
	TopicsByID        map[string]*Topic    `json:"topicsById"`
	SubTopicsByID     map[string]*SubTopic `json:"subTopicsById"`
	QuestionsByID     map[string]*Question `json:"questionsById"`
	TopicOrder        []string             `json:"topicOrder"`
	ExpandedTopics    map[string]bool      `json:"expandedTopics"`
	ExpandedSubTopics map[string]bool      `json:"expandedSubTopics"`
}

// CheckPersisted validates a loaded shape before it is accepted: every
// required container must be present and every id in the topic order must
// resolve in the topic map. A shape that fails here is discarded by the
// loader, which then falls back to the seed path.
func CheckPersisted(ps *PersistedState) error {
	if ps == nil {
		return &CorruptError{Reason: "no data"}
	}
	if ps.TopicsByID == nil {
		return &CorruptError{Reason: "missing topicsById"}
	}
	if ps.SubTopicsByID == nil {
		return &CorruptError{Reason: "missing subTopicsById"}
	}
	if ps.QuestionsByID == nil {
		return &CorruptError{Reason: "missing questionsById"}
	}
	if ps.TopicOrder == nil {
		return &CorruptError{Reason: "missing topicOrder"}
	}
	for _, id := range ps.TopicOrder {
		if _, ok := ps.TopicsByID[id]; !ok {
			return &CorruptError{Reason: "topicOrder references unknown topic " + id}
		}
	}
	return nil
}

// StateFromPersisted builds a live state from a persisted shape, running
// the validity check first. The result is a deep copy, so the persisted
// value stays detached from the store that adopts it.
func StateFromPersisted(ps *PersistedState) (State, error) {
	if err := CheckPersisted(ps); err != nil {
		return State{}, err
	}
	return ps.state(), nil
}

// state reassembles a live State from the persisted shape. The expand maps
// are optional in old payloads; missing ones come back empty.
func (ps *PersistedState) state() State {
	s := State{
		TopicsByID:        ps.TopicsByID,
		SubTopicsByID:     ps.SubTopicsByID,
		QuestionsByID:     ps.QuestionsByID,
		TopicOrder:        ps.TopicOrder,
		ExpandedTopics:    ps.ExpandedTopics,
		ExpandedSubTopics: ps.ExpandedSubTopics,
	}
	if s.ExpandedTopics == nil {
		s.ExpandedTopics = make(map[string]bool)
	}
	if s.ExpandedSubTopics == nil {
		s.ExpandedSubTopics = make(map[string]bool)
	}
	return s.Clone()
}
