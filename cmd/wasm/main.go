//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/kittclouds/goprep/internal/persist"
	"github.com/kittclouds/goprep/internal/seed"
	"github.com/kittclouds/goprep/internal/store"
)

// Version info
const Version = "0.1.0"

// Global state
var sheet *store.Store
var persister persist.Persister

func main() {
	sheet = store.New()
	println("[GoPrep] WASM Ready v" + Version)

	js.Global().Set("GoPrep", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		"init":    js.FuncOf(initialize),
		// Views
		"getHierarchy": js.FuncOf(getHierarchy),
		"getTopic":     js.FuncOf(getTopic),
		"getSubTopic":  js.FuncOf(getSubTopic),
		// Topics
		"addTopic":      js.FuncOf(addTopic),
		"renameTopic":   js.FuncOf(renameTopic),
		"deleteTopic":   js.FuncOf(deleteTopic),
		"reorderTopics": js.FuncOf(reorderTopics),
		// Sub-topics
		"addSubTopic":      js.FuncOf(addSubTopic),
		"renameSubTopic":   js.FuncOf(renameSubTopic),
		"deleteSubTopic":   js.FuncOf(deleteSubTopic),
		"reorderSubTopics": js.FuncOf(reorderSubTopics),
		"moveSubTopic":     js.FuncOf(moveSubTopic),
		// Questions
		"addQuestion":      js.FuncOf(addQuestion),
		"updateQuestion":   js.FuncOf(updateQuestion),
		"deleteQuestion":   js.FuncOf(deleteQuestion),
		"reorderQuestions": js.FuncOf(reorderQuestions),
		"moveQuestion":     js.FuncOf(moveQuestion),
		// Expansion
		"setTopicExpanded":    js.FuncOf(setTopicExpanded),
		"setSubTopicExpanded": js.FuncOf(setSubTopicExpanded),
		// History
		"undo":    js.FuncOf(undo),
		"redo":    js.FuncOf(redo),
		"canUndo": js.FuncOf(canUndo),
		"canRedo": js.FuncOf(canRedo),
		// Persistence
		"load":      js.FuncOf(load),
		"save":      js.FuncOf(save),
		"loadSheet": js.FuncOf(loadSheet),
	}))

	select {}
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// initialize opens the IndexedDB-backed store
// Args: [] (uses default "goprep" DB and "sheet.json" path)
func initialize(this js.Value, args []js.Value) interface{} {
	fs, err := indexeddb.NewFS(context.Background(), "goprep", indexeddb.Options{})
	if err != nil {
		return errorResult("failed to create idb fs: " + err.Error())
	}
	persister = persist.NewFilePersister(fs, "sheet.json")
	return successResult("initialized")
}

// =============================================================================
// Views
// =============================================================================

func getHierarchy(this js.Value, args []js.Value) interface{} {
	return jsonResult(sheet.Hierarchy())
}

// getTopic: [id string]
func getTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	node, err := sheet.TopicTree(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(node)
}

// getSubTopic: [id string]
func getSubTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	node, err := sheet.SubTopicTree(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(node)
}

// =============================================================================
// Topics
// =============================================================================

// addTopic: [name string] -> {"id": "..."}
func addTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: name")
	}
	id, err := sheet.AddTopic(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]string{"id": id})
}

// renameTopic: [id string, name string]
func renameTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: id, name")
	}
	if err := sheet.RenameTopic(args[0].String(), args[1].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("renamed")
}

// deleteTopic: [id string]
func deleteTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	if err := sheet.DeleteTopic(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted")
}

// reorderTopics: [from int, to int]
func reorderTopics(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: from, to")
	}
	if err := sheet.ReorderTopics(args[0].Int(), args[1].Int()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("reordered")
}

// =============================================================================
// Sub-topics
// =============================================================================

// addSubTopic: [topicId string, name string] -> {"id": "..."}
func addSubTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: topicId, name")
	}
	id, err := sheet.AddSubTopic(args[0].String(), args[1].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]string{"id": id})
}

// renameSubTopic: [id string, name string]
func renameSubTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: id, name")
	}
	if err := sheet.RenameSubTopic(args[0].String(), args[1].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("renamed")
}

// deleteSubTopic: [id string]
func deleteSubTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	if err := sheet.DeleteSubTopic(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted")
}

// reorderSubTopics: [topicId string, from int, to int]
func reorderSubTopics(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: topicId, from, to")
	}
	if err := sheet.ReorderSubTopics(args[0].String(), args[1].Int(), args[2].Int()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("reordered")
}

// moveSubTopic: [id string, fromTopicId string, toTopicId string, destIndex int]
func moveSubTopic(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("requires 4 args: id, fromTopicId, toTopicId, destIndex")
	}
	err := sheet.MoveSubTopic(args[0].String(), args[1].String(), args[2].String(), args[3].Int())
	if err != nil {
		return errorResult(err.Error())
	}
	return successResult("moved")
}

// =============================================================================
// Questions
// =============================================================================

// addQuestion: [subTopicId string, title string, difficulty string, link string]
// -> {"id": "..."}
func addQuestion(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("requires 4 args: subTopicId, title, difficulty, link")
	}
	id, err := sheet.AddQuestion(args[0].String(), args[1].String(),
		store.Difficulty(args[2].String()), args[3].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]string{"id": id})
}

// updateQuestion: [id string, title string, difficulty string, link string]
func updateQuestion(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("requires 4 args: id, title, difficulty, link")
	}
	err := sheet.UpdateQuestion(args[0].String(), args[1].String(),
		store.Difficulty(args[2].String()), args[3].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return successResult("updated")
}

// deleteQuestion: [id string]
func deleteQuestion(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	if err := sheet.DeleteQuestion(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted")
}

// reorderQuestions: [subTopicId string, from int, to int]
func reorderQuestions(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: subTopicId, from, to")
	}
	if err := sheet.ReorderQuestions(args[0].String(), args[1].Int(), args[2].Int()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("reordered")
}

// moveQuestion: [id string, fromSubTopicId string, toSubTopicId string, destIndex int]
func moveQuestion(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("requires 4 args: id, fromSubTopicId, toSubTopicId, destIndex")
	}
	err := sheet.MoveQuestion(args[0].String(), args[1].String(), args[2].String(), args[3].Int())
	if err != nil {
		return errorResult(err.Error())
	}
	return successResult("moved")
}

// =============================================================================
// Expansion
// =============================================================================

// setTopicExpanded: [id string, expanded bool]
func setTopicExpanded(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: id, expanded")
	}
	if err := sheet.SetTopicExpanded(args[0].String(), args[1].Bool()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("ok")
}

// setSubTopicExpanded: [id string, expanded bool]
func setSubTopicExpanded(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: id, expanded")
	}
	if err := sheet.SetSubTopicExpanded(args[0].String(), args[1].Bool()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("ok")
}

// =============================================================================
// History
// =============================================================================

func undo(this js.Value, args []js.Value) interface{} {
	return sheet.Undo()
}

func redo(this js.Value, args []js.Value) interface{} {
	return sheet.Redo()
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return sheet.CanUndo()
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return sheet.CanRedo()
}

// =============================================================================
// Persistence
// =============================================================================

// load pulls persisted state from IndexedDB, falling back to the bundled
// sheet when nothing valid is stored.
func load(this js.Value, args []js.Value) interface{} {
	if persister == nil {
		return errorResult("not initialized")
	}

	ps, err := persister.Load()
	if err == nil && ps != nil {
		if verr := store.CheckPersisted(ps); verr == nil {
			restored, rerr := store.NewFromPersisted(ps)
			if rerr == nil {
				sheet = restored
				return successResult("loaded")
			}
		}
	}

	st, nerr := seed.Normalize(seed.Fallback())
	if nerr != nil {
		return errorResult("fallback seed: " + nerr.Error())
	}
	sheet = store.NewWithState(st)
	return successResult("seeded")
}

// save writes the current state to IndexedDB
func save(this js.Value, args []js.Value) interface{} {
	if persister == nil {
		return errorResult("not initialized")
	}
	if err := persister.Save(sheet.Persisted()); err != nil {
		return errorResult("save failed: " + err.Error())
	}
	return successResult("saved")
}

// loadSheet: [sheetJSON string] replaces the whole graph with a nested sheet
// document. The replacement is a single undoable step.
func loadSheet(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: sheetJSON")
	}
	var sh seed.Sheet
	if err := json.Unmarshal([]byte(args[0].String()), &sh); err != nil {
		return errorResult("invalid sheet json: " + err.Error())
	}
	st, err := seed.Normalize(sh)
	if err != nil {
		return errorResult("normalize: " + err.Error())
	}
	sheet.ReplaceAll(st)
	return successResult("replaced")
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult("marshal: " + err.Error())
	}
	return string(jsonBytes)
}
