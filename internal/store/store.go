package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store is an explicit instance owning one entity graph and its history.
// There is no package-level singleton; hosts construct as many independent
// stores as they need (tests rely on this).
//
// All operations are synchronous read-modify-write. The mutex guards the
// combined record+apply sequence so snapshots always match the state they
// were taken from, even if a host calls in from multiple goroutines.
type Store struct {
	mu      sync.Mutex
	state   State
	history *history
}

// New creates an empty store with the default history capacity.
func New() *Store {
	return NewWithState(NewState())
}

// NewWithState creates a store around an injected initial graph. The initial
// state is not recorded in history, so it cannot be undone past.
func NewWithState(st State) *Store {
	return NewWithCapacity(st, DefaultHistoryCapacity)
}

// NewWithCapacity creates a store with an explicit undo depth.
func NewWithCapacity(st State, capacity int) *Store {
	return &Store{
		state:   ensureAllocated(st),
		history: newHistory(capacity),
	}
}

// NewFromPersisted rebuilds a store from a loaded shape. The shape must pass
// CheckPersisted; callers that get an error back are expected to discard the
// payload and initialize empty instead.
func NewFromPersisted(ps *PersistedState) (*Store, error) {
	st, err := StateFromPersisted(ps)
	if err != nil {
		return nil, err
	}
	return NewWithState(st), nil
}

func ensureAllocated(st State) State {
	if st.TopicsByID == nil {
		st.TopicsByID = make(map[string]*Topic)
	}
	if st.SubTopicsByID == nil {
		st.SubTopicsByID = make(map[string]*SubTopic)
	}
	if st.QuestionsByID == nil {
		st.QuestionsByID = make(map[string]*Question)
	}
	if st.TopicOrder == nil {
		st.TopicOrder = []string{}
	}
	if st.ExpandedTopics == nil {
		st.ExpandedTopics = make(map[string]bool)
	}
	if st.ExpandedSubTopics == nil {
		st.ExpandedSubTopics = make(map[string]bool)
	}
	return st
}

func newID() string {
	return uuid.NewString()
}

// Persisted exports the durable subset of the store as a deep copy.
func (s *Store) Persisted() *PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.state.Clone()
	return &PersistedState{
		Version:           SchemaVersion,
		TopicsByID:        c.TopicsByID,
		SubTopicsByID:     c.SubTopicsByID,
		QuestionsByID:     c.QuestionsByID,
		TopicOrder:        c.TopicOrder,
		ExpandedTopics:    c.ExpandedTopics,
		ExpandedSubTopics: c.ExpandedSubTopics,
	}
}

// =============================================================================
// Topics
// =============================================================================

// AddTopic creates a topic at the end of the top-level order and returns its
// fresh id. New topics start expanded.
func (s *Store) AddTopic(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	if err := ValidateName("Topic name", trimmed, s.topicNames("")); err != nil {
		return "", err
	}

	s.history.record(s.state)
	id := newID()
	s.state.TopicsByID[id] = &Topic{ID: id, Name: trimmed, SubTopicIDs: []string{}}
	s.state.TopicOrder = append(s.state.TopicOrder, id)
	s.state.ExpandedTopics[id] = true
	return id, nil
}

// RenameTopic updates a topic's name in place.
func (s *Store) RenameTopic(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.TopicsByID[id]; !ok {
		return notFound("topic", id)
	}
	trimmed := strings.TrimSpace(name)
	if err := ValidateName("Topic name", trimmed, s.topicNames(id)); err != nil {
		return err
	}

	s.history.record(s.state)
	s.state.TopicsByID[id].Name = trimmed
	return nil
}

// DeleteTopic removes a topic and, by cascade, all its sub-topics and their
// questions.
func (s *Store) DeleteTopic(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, ok := s.state.TopicsByID[id]
	if !ok {
		return notFound("topic", id)
	}

	s.history.record(s.state)
	for _, subID := range topic.SubTopicIDs {
		s.purgeSubTopic(subID)
	}
	s.state.TopicOrder = removeID(s.state.TopicOrder, id)
	delete(s.state.TopicsByID, id)
	delete(s.state.ExpandedTopics, id)
	return nil
}

// ReorderTopics moves the topic at position from to position to within the
// top-level order. Indices are positions at call time, not stable handles.
func (s *Store) ReorderTopics(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorder(&s.state.TopicOrder, from, to)
}

// =============================================================================
// Sub-topics
// =============================================================================

// AddSubTopic creates a sub-topic at the end of the topic's order and
// returns its fresh id.
func (s *Store) AddSubTopic(topicID, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, ok := s.state.TopicsByID[topicID]
	if !ok {
		return "", notFound("topic", topicID)
	}
	trimmed := strings.TrimSpace(name)
	if err := ValidateName("Sub-topic name", trimmed, s.subTopicNames(topic, "")); err != nil {
		return "", err
	}

	s.history.record(s.state)
	id := newID()
	s.state.SubTopicsByID[id] = &SubTopic{ID: id, Name: trimmed, TopicID: topicID, QuestionIDs: []string{}}
	topic.SubTopicIDs = append(topic.SubTopicIDs, id)
	s.state.ExpandedSubTopics[id] = true
	return id, nil
}

// RenameSubTopic updates a sub-topic's name in place.
func (s *Store) RenameSubTopic(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.state.SubTopicsByID[id]
	if !ok {
		return notFound("sub-topic", id)
	}
	topic, ok := s.state.TopicsByID[sub.TopicID]
	if !ok {
		return notFound("topic", sub.TopicID)
	}
	trimmed := strings.TrimSpace(name)
	if err := ValidateName("Sub-topic name", trimmed, s.subTopicNames(topic, id)); err != nil {
		return err
	}

	s.history.record(s.state)
	sub.Name = trimmed
	return nil
}

// DeleteSubTopic removes a sub-topic and all its questions.
func (s *Store) DeleteSubTopic(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.state.SubTopicsByID[id]
	if !ok {
		return notFound("sub-topic", id)
	}

	s.history.record(s.state)
	if topic, ok := s.state.TopicsByID[sub.TopicID]; ok {
		topic.SubTopicIDs = removeID(topic.SubTopicIDs, id)
	}
	s.purgeSubTopic(id)
	return nil
}

// ReorderSubTopics moves a sub-topic within its topic's order.
func (s *Store) ReorderSubTopics(topicID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, ok := s.state.TopicsByID[topicID]
	if !ok {
		return notFound("topic", topicID)
	}
	return s.reorder(&topic.SubTopicIDs, from, to)
}

// MoveSubTopic transfers a sub-topic from one topic to another, inserting it
// at destIndex in the destination order and reassigning its back-reference.
// The transfer is atomic: within any committed state the sub-topic is owned
// by exactly one topic.
//
// A stale ownership claim (the sub-topic is not actually under fromTopicID)
// is a silent no-op rather than an error. That mirrors the original behavior
// and guards against callers acting on an outdated view, but it can also
// mask caller bugs; worth revisiting.
func (s *Store) MoveSubTopic(id, fromTopicID, toTopicID string, destIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.state.SubTopicsByID[id]
	if !ok {
		return notFound("sub-topic", id)
	}
	from, ok := s.state.TopicsByID[fromTopicID]
	if !ok {
		return notFound("topic", fromTopicID)
	}
	to, ok := s.state.TopicsByID[toTopicID]
	if !ok {
		return notFound("topic", toTopicID)
	}
	if fromTopicID == toTopicID {
		return nil
	}
	if sub.TopicID != fromTopicID || !containsID(from.SubTopicIDs, id) {
		return nil
	}
	if err := ValidateName("Sub-topic name", sub.Name, s.subTopicNames(to, id)); err != nil {
		return err
	}

	s.history.record(s.state)
	from.SubTopicIDs = removeID(from.SubTopicIDs, id)
	to.SubTopicIDs = insertID(to.SubTopicIDs, id, destIndex)
	sub.TopicID = toTopicID
	return nil
}

// =============================================================================
// Questions
// =============================================================================

// AddQuestion creates a question at the end of the sub-topic's order and
// returns its fresh id.
func (s *Store) AddQuestion(subTopicID, title string, difficulty Difficulty, link string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.state.SubTopicsByID[subTopicID]
	if !ok {
		return "", notFound("sub-topic", subTopicID)
	}
	trimmed := strings.TrimSpace(title)
	if err := ValidateQuestionTitle(trimmed, s.questionTitles(sub, "")); err != nil {
		return "", err
	}
	if err := ValidateDifficulty(difficulty); err != nil {
		return "", err
	}
	link = strings.TrimSpace(link)
	if err := ValidateURL(link); err != nil {
		return "", err
	}

	s.history.record(s.state)
	id := newID()
	s.state.QuestionsByID[id] = &Question{ID: id, Title: trimmed, Difficulty: difficulty, Link: link}
	sub.QuestionIDs = append(sub.QuestionIDs, id)
	return id, nil
}

// UpdateQuestion edits a question's title, difficulty and link in place.
func (s *Store) UpdateQuestion(id, title string, difficulty Difficulty, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.state.QuestionsByID[id]
	if !ok {
		return notFound("question", id)
	}
	sub := s.owningSubTopic(id)
	if sub == nil {
		return notFound("question", id)
	}
	trimmed := strings.TrimSpace(title)
	if err := ValidateQuestionTitle(trimmed, s.questionTitles(sub, id)); err != nil {
		return err
	}
	if err := ValidateDifficulty(difficulty); err != nil {
		return err
	}
	link = strings.TrimSpace(link)
	if err := ValidateURL(link); err != nil {
		return err
	}

	s.history.record(s.state)
	q.Title = trimmed
	q.Difficulty = difficulty
	q.Link = link
	return nil
}

// DeleteQuestion removes a single question.
func (s *Store) DeleteQuestion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.QuestionsByID[id]; !ok {
		return notFound("question", id)
	}

	s.history.record(s.state)
	if sub := s.owningSubTopic(id); sub != nil {
		sub.QuestionIDs = removeID(sub.QuestionIDs, id)
	}
	delete(s.state.QuestionsByID, id)
	return nil
}

// ReorderQuestions moves a question within its sub-topic's order.
func (s *Store) ReorderQuestions(subTopicID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.state.SubTopicsByID[subTopicID]
	if !ok {
		return notFound("sub-topic", subTopicID)
	}
	return s.reorder(&sub.QuestionIDs, from, to)
}

// MoveQuestion transfers a question from one sub-topic to another at
// destIndex. Same stale-claim semantics as MoveSubTopic.
func (s *Store) MoveQuestion(id, fromSubTopicID, toSubTopicID string, destIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.state.QuestionsByID[id]
	if !ok {
		return notFound("question", id)
	}
	from, ok := s.state.SubTopicsByID[fromSubTopicID]
	if !ok {
		return notFound("sub-topic", fromSubTopicID)
	}
	to, ok := s.state.SubTopicsByID[toSubTopicID]
	if !ok {
		return notFound("sub-topic", toSubTopicID)
	}
	if fromSubTopicID == toSubTopicID {
		return nil
	}
	if !containsID(from.QuestionIDs, id) {
		return nil
	}
	if err := ValidateQuestionTitle(q.Title, s.questionTitles(to, id)); err != nil {
		return err
	}

	s.history.record(s.state)
	from.QuestionIDs = removeID(from.QuestionIDs, id)
	to.QuestionIDs = insertID(to.QuestionIDs, id, destIndex)
	return nil
}

// =============================================================================
// Expand/collapse (cosmetic, no history record)
// =============================================================================

// SetTopicExpanded flags a topic as expanded or collapsed in the UI.
func (s *Store) SetTopicExpanded(id string, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.TopicsByID[id]; !ok {
		return notFound("topic", id)
	}
	s.state.ExpandedTopics[id] = expanded
	return nil
}

// SetSubTopicExpanded flags a sub-topic as expanded or collapsed in the UI.
func (s *Store) SetSubTopicExpanded(id string, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.SubTopicsByID[id]; !ok {
		return notFound("sub-topic", id)
	}
	s.state.ExpandedSubTopics[id] = expanded
	return nil
}

// =============================================================================
// Whole-graph replacement
// =============================================================================

// ReplaceAll swaps in a complete new graph in one step. This is the landing
// point for the seed-data collaborator; a superseded fetch must simply not
// call it. The replacement is recorded, so it is undoable like any edit.
func (s *Store) ReplaceAll(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.record(s.state)
	s.state = ensureAllocated(st).Clone()
}

// =============================================================================
// Undo / redo
// =============================================================================

// Undo restores the state immediately preceding the last recorded edit.
// Returns false when there is nothing to undo.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.undo(s.state)
	if !ok {
		return false
	}
	s.history.restoring = true
	s.state = snap.Clone()
	s.history.restoring = false
	return true
}

// Redo re-applies the next snapshot forward. Returns false when at-present.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.redo()
	if !ok {
		return false
	}
	s.history.restoring = true
	s.state = snap.Clone()
	s.history.restoring = false
	return true
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.canUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.canRedo()
}

// ClearHistory drops all snapshots. Used after a persisted load so the
// pre-load void is not reachable by undo.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.reset()
}

// =============================================================================
// Helpers
// =============================================================================

// reorder applies move-within-array semantics: the element is removed from
// position from and reinserted at position to.
func (s *Store) reorder(order *[]string, from, to int) error {
	n := len(*order)
	if from < 0 || from >= n || to < 0 || to >= n {
		return &ValidationError{Field: "Position", Reason: "out of range"}
	}
	if from == to {
		return nil
	}

	s.history.record(s.state)
	arr := *order
	id := arr[from]
	arr = append(arr[:from], arr[from+1:]...)
	arr = insertID(arr, id, to)
	*order = arr
	return nil
}

func (s *Store) purgeSubTopic(id string) {
	sub, ok := s.state.SubTopicsByID[id]
	if !ok {
		return
	}
	for _, qID := range sub.QuestionIDs {
		delete(s.state.QuestionsByID, qID)
	}
	delete(s.state.SubTopicsByID, id)
	delete(s.state.ExpandedSubTopics, id)
}

func (s *Store) owningSubTopic(questionID string) *SubTopic {
	for _, sub := range s.state.SubTopicsByID {
		if containsID(sub.QuestionIDs, questionID) {
			return sub
		}
	}
	return nil
}

func (s *Store) topicNames(excludeID string) []string {
	names := make([]string, 0, len(s.state.TopicOrder))
	for _, id := range s.state.TopicOrder {
		if id == excludeID {
			continue
		}
		if t, ok := s.state.TopicsByID[id]; ok {
			names = append(names, t.Name)
		}
	}
	return names
}

func (s *Store) subTopicNames(topic *Topic, excludeID string) []string {
	names := make([]string, 0, len(topic.SubTopicIDs))
	for _, id := range topic.SubTopicIDs {
		if id == excludeID {
			continue
		}
		if sub, ok := s.state.SubTopicsByID[id]; ok {
			names = append(names, sub.Name)
		}
	}
	return names
}

func (s *Store) questionTitles(sub *SubTopic, excludeID string) []string {
	titles := make([]string, 0, len(sub.QuestionIDs))
	for _, id := range sub.QuestionIDs {
		if id == excludeID {
			continue
		}
		if q, ok := s.state.QuestionsByID[id]; ok {
			titles = append(titles, q.Title)
		}
	}
	return titles
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertID(ids []string, id string, index int) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
