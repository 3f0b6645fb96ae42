// Package seed supplies the initial dataset for a GoPrep store: either a
// nested sheet fetched over HTTP or the built-in fallback. The core only
// ever sees a well-formed normalized state; every acquisition failure is
// absorbed here.
package seed

import (
	"github.com/google/uuid"

	"github.com/kittclouds/goprep/internal/store"
)

// Sheet is the nested wire shape a seed source produces. It mirrors the
// hierarchy one-to-one; normalization into the flat store shape happens in
// Normalize.
type Sheet struct {
	Topics []SheetTopic `json:"topics"`
}

// SheetTopic is a topic with its ordered sub-topics.
type SheetTopic struct {
	Name      string          `json:"name"`
	SubTopics []SheetSubTopic `json:"subTopics"`
}

// SheetSubTopic is a sub-topic with its ordered questions.
type SheetSubTopic struct {
	Name      string          `json:"name"`
	Questions []SheetQuestion `json:"questions"`
}

// SheetQuestion is a single question entry.
type SheetQuestion struct {
	Title      string           `json:"title"`
	Difficulty store.Difficulty `json:"difficulty,omitempty"`
	Link       string           `json:"link,omitempty"`
}

// Empty reports whether the sheet carries no topics at all. An empty sheet
// is rejected and replaced by the fallback.
func (s Sheet) Empty() bool {
	return len(s.Topics) == 0
}

// Normalize flattens a nested sheet into the store's normalized state,
// assigning fresh ids throughout. Topics and sub-topics come back expanded.
func Normalize(sheet Sheet) (store.State, error) {
	if sheet.Empty() {
		return store.State{}, &store.CorruptError{Reason: "empty sheet"}
	}

	st := store.NewState()
	for _, t := range sheet.Topics {
		topicID := uuid.NewString()
		topic := &store.Topic{ID: topicID, Name: t.Name, SubTopicIDs: []string{}}
		st.TopicsByID[topicID] = topic
		st.TopicOrder = append(st.TopicOrder, topicID)
		st.ExpandedTopics[topicID] = true

		for _, sub := range t.SubTopics {
			subID := uuid.NewString()
			subTopic := &store.SubTopic{ID: subID, Name: sub.Name, TopicID: topicID, QuestionIDs: []string{}}
			st.SubTopicsByID[subID] = subTopic
			topic.SubTopicIDs = append(topic.SubTopicIDs, subID)
			st.ExpandedSubTopics[subID] = true

			for _, q := range sub.Questions {
				qID := uuid.NewString()
				st.QuestionsByID[qID] = &store.Question{
					ID:         qID,
					Title:      q.Title,
					Difficulty: q.Difficulty,
					Link:       q.Link,
				}
				subTopic.QuestionIDs = append(subTopic.QuestionIDs, qID)
			}
		}
	}
	return st, nil
}

// Fallback is the deterministic built-in dataset used whenever no remote
// sheet can be obtained.
func Fallback() Sheet {
	return Sheet{
		Topics: []SheetTopic{
			{
				Name: "Arrays",
				SubTopics: []SheetSubTopic{
					{
						Name: "Two Pointers",
						Questions: []SheetQuestion{
							{Title: "Two Sum", Difficulty: store.DifficultyEasy, Link: "https://leetcode.com/problems/two-sum"},
							{Title: "Container With Most Water", Difficulty: store.DifficultyMedium, Link: "https://leetcode.com/problems/container-with-most-water"},
						},
					},
					{
						Name: "Sliding Window",
						Questions: []SheetQuestion{
							{Title: "Longest Substring Without Repeating Characters", Difficulty: store.DifficultyMedium, Link: "https://leetcode.com/problems/longest-substring-without-repeating-characters"},
						},
					},
				},
			},
			{
				Name: "Strings",
				SubTopics: []SheetSubTopic{
					{
						Name: "Pattern Matching",
						Questions: []SheetQuestion{
							{Title: "Find the Index of the First Occurrence in a String", Difficulty: store.DifficultyEasy, Link: "https://leetcode.com/problems/find-the-index-of-the-first-occurrence-in-a-string"},
						},
					},
				},
			},
			{
				Name: "Graphs",
				SubTopics: []SheetSubTopic{
					{
						Name: "Traversal",
						Questions: []SheetQuestion{
							{Title: "Number of Islands", Difficulty: store.DifficultyMedium, Link: "https://leetcode.com/problems/number-of-islands"},
							{Title: "Clone Graph", Difficulty: store.DifficultyMedium, Link: "https://leetcode.com/problems/clone-graph"},
						},
					},
				},
			},
		},
	}
}
