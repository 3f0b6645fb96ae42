package persist

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/kittclouds/goprep/internal/store"
)

// SQLitePersister stores the state in a normalized relational schema:
// one row per entity, ordering in position columns, schema version in a
// meta table. Save rewrites the whole database in one transaction; the
// persisted unit is the full durable subset, matching the file adapter.
type SQLitePersister struct {
	mu sync.Mutex
	db *sql.DB
}

// Note: no foreign keys. Referential integrity is owned by the core store,
// the database only has to hold what it was given.
const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS topics (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    expanded INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS subtopics (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    topic_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    expanded INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_subtopics_topic ON subtopics(topic_id);

CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    subtopic_id TEXT NOT NULL,
    title TEXT NOT NULL,
    difficulty TEXT NOT NULL DEFAULT '',
    link TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_subtopic ON questions(subtopic_id);
`

// NewSQLitePersister creates an in-memory persister. Mostly useful in tests.
func NewSQLitePersister() (*SQLitePersister, error) {
	return NewSQLitePersisterWithDSN(":memory:")
}

// NewSQLitePersisterWithDSN creates a persister with a specific data source
// name. Use ":memory:" for in-memory or a file path for durable storage.
func NewSQLitePersisterWithDSN(dsn string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		// An existing file SQLite cannot read is corrupt persisted state,
		// classified the same way the file adapter classifies bad JSON.
		db.Close()
		return nil, &store.CorruptError{Reason: "unreadable database: " + err.Error()}
	}
	return &SQLitePersister{db: db}, nil
}

// Close closes the database connection.
func (p *SQLitePersister) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Save rewrites all tables from the given state in one transaction.
func (p *SQLitePersister) Save(ps *store.PersistedState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"topics", "subtopics", "questions", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, ps.Version); err != nil {
		return err
	}

	for pos, id := range ps.TopicOrder {
		topic, ok := ps.TopicsByID[id]
		if !ok {
			continue
		}
		_, err := tx.Exec(`INSERT INTO topics (id, name, position, expanded) VALUES (?, ?, ?, ?)`,
			topic.ID, topic.Name, pos, boolToInt(ps.ExpandedTopics[topic.ID]))
		if err != nil {
			return err
		}
		for subPos, subID := range topic.SubTopicIDs {
			sub, ok := ps.SubTopicsByID[subID]
			if !ok {
				continue
			}
			_, err := tx.Exec(`INSERT INTO subtopics (id, name, topic_id, position, expanded) VALUES (?, ?, ?, ?, ?)`,
				sub.ID, sub.Name, sub.TopicID, subPos, boolToInt(ps.ExpandedSubTopics[sub.ID]))
			if err != nil {
				return err
			}
			for qPos, qID := range sub.QuestionIDs {
				q, ok := ps.QuestionsByID[qID]
				if !ok {
					continue
				}
				_, err := tx.Exec(`INSERT INTO questions (id, subtopic_id, title, difficulty, link, position) VALUES (?, ?, ?, ?, ?, ?)`,
					q.ID, sub.ID, q.Title, string(q.Difficulty), q.Link, qPos)
				if err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

// Load reassembles the persisted shape from the tables. An empty database
// (no meta row) means a first run.
func (p *SQLitePersister) Load() (*store.PersistedState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var version int
	err := p.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ps := &store.PersistedState{
		Version:           version,
		TopicsByID:        make(map[string]*store.Topic),
		SubTopicsByID:     make(map[string]*store.SubTopic),
		QuestionsByID:     make(map[string]*store.Question),
		TopicOrder:        []string{},
		ExpandedTopics:    make(map[string]bool),
		ExpandedSubTopics: make(map[string]bool),
	}

	rows, err := p.db.Query(`SELECT id, name, expanded FROM topics ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t store.Topic
		var expanded int
		if err := rows.Scan(&t.ID, &t.Name, &expanded); err != nil {
			return nil, err
		}
		t.SubTopicIDs = []string{}
		ps.TopicsByID[t.ID] = &t
		ps.TopicOrder = append(ps.TopicOrder, t.ID)
		ps.ExpandedTopics[t.ID] = expanded != 0
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := p.db.Query(`SELECT id, name, topic_id, expanded FROM subtopics ORDER BY topic_id, position`)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()
	for subRows.Next() {
		var st store.SubTopic
		var expanded int
		if err := subRows.Scan(&st.ID, &st.Name, &st.TopicID, &expanded); err != nil {
			return nil, err
		}
		st.QuestionIDs = []string{}
		ps.SubTopicsByID[st.ID] = &st
		ps.ExpandedSubTopics[st.ID] = expanded != 0
		if topic, ok := ps.TopicsByID[st.TopicID]; ok {
			topic.SubTopicIDs = append(topic.SubTopicIDs, st.ID)
		}
	}
	if err := subRows.Err(); err != nil {
		return nil, err
	}

	qRows, err := p.db.Query(`SELECT id, subtopic_id, title, difficulty, link FROM questions ORDER BY subtopic_id, position`)
	if err != nil {
		return nil, err
	}
	defer qRows.Close()
	for qRows.Next() {
		var q store.Question
		var subID, difficulty string
		if err := qRows.Scan(&q.ID, &subID, &q.Title, &difficulty, &q.Link); err != nil {
			return nil, err
		}
		q.Difficulty = store.Difficulty(difficulty)
		ps.QuestionsByID[q.ID] = &q
		if sub, ok := ps.SubTopicsByID[subID]; ok {
			sub.QuestionIDs = append(sub.QuestionIDs, q.ID)
		}
	}
	if err := qRows.Err(); err != nil {
		return nil, err
	}

	return ps, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time interface check
var _ Persister = (*SQLitePersister)(nil)
