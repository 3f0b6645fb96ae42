package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kittclouds/goprep/internal/store"
)

// target is a resolved path: the addressed node plus everything needed to
// issue the corresponding store call.
type target struct {
	depth int // 1 topic, 2 sub-topic, 3 question

	topic    store.TopicNode
	sub      store.SubTopicNode
	question store.QuestionNode

	topicIndex, subIndex, questionIndex int
}

// parsePath turns "2.1.3" into zero-based index parts.
func parsePath(s string) ([]int, error) {
	raw := strings.Split(s, ".")
	if len(raw) > 3 {
		return nil, fmt.Errorf("path %q is too deep", s)
	}
	parts := make([]int, len(raw))
	for i, r := range raw {
		n, err := strconv.Atoi(r)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad path %q", s)
		}
		parts[i] = n - 1
	}
	return parts, nil
}

// resolve maps index parts onto the current hierarchy.
func resolve(tree []store.TopicNode, parts []int) (target, error) {
	var tg target
	if len(parts) == 0 {
		return tg, fmt.Errorf("empty path")
	}

	if parts[0] >= len(tree) {
		return tg, fmt.Errorf("no topic at position %d", parts[0]+1)
	}
	tg.depth = 1
	tg.topicIndex = parts[0]
	tg.topic = tree[parts[0]]
	if len(parts) == 1 {
		return tg, nil
	}

	if parts[1] >= len(tg.topic.SubTopics) {
		return tg, fmt.Errorf("no sub-topic at position %d under %s", parts[1]+1, tg.topic.Name)
	}
	tg.depth = 2
	tg.subIndex = parts[1]
	tg.sub = tg.topic.SubTopics[parts[1]]
	if len(parts) == 2 {
		return tg, nil
	}

	if parts[2] >= len(tg.sub.Questions) {
		return tg, fmt.Errorf("no question at position %d under %s", parts[2]+1, tg.sub.Name)
	}
	tg.depth = 3
	tg.questionIndex = parts[2]
	tg.question = tg.sub.Questions[parts[2]]
	return tg, nil
}

func (c *CLI) resolveArg(arg string) (target, error) {
	parts, err := parsePath(arg)
	if err != nil {
		return target{}, err
	}
	return resolve(c.app.Store.Hierarchy(), parts)
}

// commit autosaves after a successful mutation.
func (c *CLI) commit(err error) error {
	if err != nil {
		return err
	}
	return c.app.Save()
}

// =============================================================================
// Handlers
// =============================================================================

func (c *CLI) handleShow(args []string) error {
	tree := c.app.Store.Hierarchy()
	if len(args) == 0 {
		renderTree(c.out, tree)
		return nil
	}
	tg, err := c.resolveArg(args[0])
	if err != nil {
		return err
	}
	switch tg.depth {
	case 1:
		renderTree(c.out, []store.TopicNode{tg.topic})
	case 2:
		renderSubTopic(c.out, "", tg.subIndex, tg.sub)
	case 3:
		renderQuestion(c.out, "", tg.questionIndex, tg.question)
	}
	return nil
}

func (c *CLI) handleAdd(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add topic|sub|q ...")
	}
	switch args[0] {
	case "topic":
		_, err := c.app.Store.AddTopic(args[1])
		return c.commit(err)
	case "sub":
		if len(args) < 3 {
			return fmt.Errorf("usage: add sub TOPIC \"Name\"")
		}
		tg, err := c.resolveArg(args[1])
		if err != nil {
			return err
		}
		if tg.depth != 1 {
			return fmt.Errorf("add sub expects a topic path")
		}
		_, err = c.app.Store.AddSubTopic(tg.topic.ID, args[2])
		return c.commit(err)
	case "q":
		if len(args) < 3 {
			return fmt.Errorf("usage: add q TOPIC.SUB \"Title\" [difficulty] [link]")
		}
		tg, err := c.resolveArg(args[1])
		if err != nil {
			return err
		}
		if tg.depth != 2 {
			return fmt.Errorf("add q expects a sub-topic path")
		}
		var difficulty store.Difficulty
		var link string
		if len(args) > 3 {
			difficulty = store.Difficulty(args[3])
		}
		if len(args) > 4 {
			link = args[4]
		}
		_, err = c.app.Store.AddQuestion(tg.sub.ID, args[2], difficulty, link)
		return c.commit(err)
	default:
		return fmt.Errorf("unknown add target %q", args[0])
	}
}

func (c *CLI) handleRename(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: rename PATH \"New name\"")
	}
	tg, err := c.resolveArg(args[0])
	if err != nil {
		return err
	}
	switch tg.depth {
	case 1:
		return c.commit(c.app.Store.RenameTopic(tg.topic.ID, args[1]))
	case 2:
		return c.commit(c.app.Store.RenameSubTopic(tg.sub.ID, args[1]))
	default:
		q := tg.question
		return c.commit(c.app.Store.UpdateQuestion(q.ID, args[1], q.Difficulty, q.Link))
	}
}

func (c *CLI) handleDelete(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: del PATH")
	}
	tg, err := c.resolveArg(args[0])
	if err != nil {
		return err
	}
	switch tg.depth {
	case 1:
		return c.commit(c.app.Store.DeleteTopic(tg.topic.ID))
	case 2:
		return c.commit(c.app.Store.DeleteSubTopic(tg.sub.ID))
	default:
		return c.commit(c.app.Store.DeleteQuestion(tg.question.ID))
	}
}

func (c *CLI) handleReorder(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: reorder PATH INDEX")
	}
	tg, err := c.resolveArg(args[0])
	if err != nil {
		return err
	}
	to, err := strconv.Atoi(args[1])
	if err != nil || to < 1 {
		return fmt.Errorf("bad index %q", args[1])
	}
	to--
	switch tg.depth {
	case 1:
		return c.commit(c.app.Store.ReorderTopics(tg.topicIndex, to))
	case 2:
		return c.commit(c.app.Store.ReorderSubTopics(tg.topic.ID, tg.subIndex, to))
	default:
		return c.commit(c.app.Store.ReorderQuestions(tg.sub.ID, tg.questionIndex, to))
	}
}

func (c *CLI) handleMove(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: move PATH DEST [INDEX]")
	}
	tg, err := c.resolveArg(args[0])
	if err != nil {
		return err
	}
	dest, err := c.resolveArg(args[1])
	if err != nil {
		return err
	}
	index := 0
	if len(args) > 2 {
		index, err = strconv.Atoi(args[2])
		if err != nil || index < 1 {
			return fmt.Errorf("bad index %q", args[2])
		}
		index--
	}

	switch tg.depth {
	case 2:
		if dest.depth != 1 {
			return fmt.Errorf("move of a sub-topic expects a topic destination")
		}
		// Self-moves are rejected here, not in the store.
		if dest.topic.ID == tg.topic.ID {
			return fmt.Errorf("sub-topic is already under %s (use reorder)", dest.topic.Name)
		}
		return c.commit(c.app.Store.MoveSubTopic(tg.sub.ID, tg.topic.ID, dest.topic.ID, index))
	case 3:
		if dest.depth != 2 {
			return fmt.Errorf("move of a question expects a sub-topic destination")
		}
		if dest.sub.ID == tg.sub.ID {
			return fmt.Errorf("question is already under %s (use reorder)", dest.sub.Name)
		}
		return c.commit(c.app.Store.MoveQuestion(tg.question.ID, tg.sub.ID, dest.sub.ID, index))
	default:
		return fmt.Errorf("topics cannot change container (use reorder)")
	}
}

func (c *CLI) handleExpand(args []string, expanded bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: expand|collapse PATH")
	}
	tg, err := c.resolveArg(args[0])
	if err != nil {
		return err
	}
	switch tg.depth {
	case 1:
		return c.commit(c.app.Store.SetTopicExpanded(tg.topic.ID, expanded))
	case 2:
		return c.commit(c.app.Store.SetSubTopicExpanded(tg.sub.ID, expanded))
	default:
		return fmt.Errorf("questions do not expand")
	}
}

func (c *CLI) handleUndo() error {
	if !c.app.Store.Undo() {
		fmt.Fprintln(c.out, "nothing to undo")
		return nil
	}
	return c.app.Save()
}

func (c *CLI) handleRedo() error {
	if !c.app.Store.Redo() {
		fmt.Fprintln(c.out, "nothing to redo")
		return nil
	}
	return c.app.Save()
}

func (c *CLI) handleSeed(ctx context.Context) error {
	if !c.app.Reseed(ctx) {
		fmt.Fprintln(c.out, "seed superseded, nothing applied")
		return nil
	}
	return c.app.Save()
}
