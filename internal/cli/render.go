package cli

import (
	"fmt"
	"io"

	"github.com/kittclouds/goprep/internal/store"
)

// renderTree prints the hierarchy with 1-based positions and expand markers.
// Collapsed containers show a summary count instead of their children.
func renderTree(w io.Writer, tree []store.TopicNode) {
	if len(tree) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for i, topic := range tree {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, marker(topic.Expanded), topic.Name)
		if !topic.Expanded {
			continue
		}
		for j, sub := range topic.SubTopics {
			renderSubTopic(w, "   ", j, sub)
		}
	}
}

func renderSubTopic(w io.Writer, indent string, index int, sub store.SubTopicNode) {
	fmt.Fprintf(w, "%s%d. %s %s\n", indent, index+1, marker(sub.Expanded), sub.Name)
	if !sub.Expanded {
		return
	}
	for k, q := range sub.Questions {
		renderQuestion(w, indent+"   ", k, q)
	}
}

func renderQuestion(w io.Writer, indent string, index int, q store.QuestionNode) {
	fmt.Fprintf(w, "%s%d. %s", indent, index+1, q.Title)
	if q.Difficulty != "" {
		fmt.Fprintf(w, " [%s]", q.Difficulty)
	}
	if q.Link != "" {
		fmt.Fprintf(w, "  %s", q.Link)
	}
	fmt.Fprintln(w)
}

func marker(expanded bool) string {
	if expanded {
		return "-"
	}
	return "+"
}
