package store

// The view layer is a pure projection: it assembles the nested hierarchy the
// presentation side consumes from the flat maps and order arrays. It is
// recomputed on every call and never writes back, so the two representations
// cannot drift apart.

// QuestionNode is the read-only projection of a question.
type QuestionNode struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Link       string     `json:"link,omitempty"`
}

// SubTopicNode is the read-only projection of a sub-topic with its ordered
// questions.
type SubTopicNode struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	TopicID   string         `json:"topicId"`
	Expanded  bool           `json:"expanded"`
	Questions []QuestionNode `json:"questions"`
}

// TopicNode is the read-only projection of a topic with its ordered
// sub-topics.
type TopicNode struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Expanded  bool           `json:"expanded"`
	SubTopics []SubTopicNode `json:"subTopics"`
}

// Hierarchy returns the full ordered nested hierarchy.
func (s *Store) Hierarchy() []TopicNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TopicNode, 0, len(s.state.TopicOrder))
	for _, id := range s.state.TopicOrder {
		if topic, ok := s.state.TopicsByID[id]; ok {
			out = append(out, s.topicNode(topic))
		}
	}
	return out
}

// TopicTree returns a single topic's nested subtree.
func (s *Store) TopicTree(id string) (*TopicNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, ok := s.state.TopicsByID[id]
	if !ok {
		return nil, notFound("topic", id)
	}
	node := s.topicNode(topic)
	return &node, nil
}

// SubTopicTree returns a single sub-topic's nested subtree.
func (s *Store) SubTopicTree(id string) (*SubTopicNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.state.SubTopicsByID[id]
	if !ok {
		return nil, notFound("sub-topic", id)
	}
	node := s.subTopicNode(sub)
	return &node, nil
}

func (s *Store) topicNode(topic *Topic) TopicNode {
	node := TopicNode{
		ID:        topic.ID,
		Name:      topic.Name,
		Expanded:  s.state.ExpandedTopics[topic.ID],
		SubTopics: make([]SubTopicNode, 0, len(topic.SubTopicIDs)),
	}
	for _, subID := range topic.SubTopicIDs {
		if sub, ok := s.state.SubTopicsByID[subID]; ok {
			node.SubTopics = append(node.SubTopics, s.subTopicNode(sub))
		}
	}
	return node
}

func (s *Store) subTopicNode(sub *SubTopic) SubTopicNode {
	node := SubTopicNode{
		ID:        sub.ID,
		Name:      sub.Name,
		TopicID:   sub.TopicID,
		Expanded:  s.state.ExpandedSubTopics[sub.ID],
		Questions: make([]QuestionNode, 0, len(sub.QuestionIDs)),
	}
	for _, qID := range sub.QuestionIDs {
		if q, ok := s.state.QuestionsByID[qID]; ok {
			node.Questions = append(node.Questions, QuestionNode{
				ID:         q.ID,
				Title:      q.Title,
				Difficulty: q.Difficulty,
				Link:       q.Link,
			})
		}
	}
	return node
}
