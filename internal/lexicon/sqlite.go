package lexicon

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps a thesaurus in a SQLite database using modernc.org/sqlite.
type SQLiteStore struct {
	db       *sql.DB
	stemming bool
}

// OpenSQLite opens a thesaurus database at the given path and configures WAL mode.
func OpenSQLite(dsn string, stemming bool) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "lexicon: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "lexicon: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, stemming: stemming}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS synsets (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS lemmas (
	synset_id INTEGER NOT NULL REFERENCES synsets(id),
	lemma     TEXT NOT NULL,
	stem      TEXT NOT NULL,
	PRIMARY KEY (synset_id, lemma)
);

CREATE INDEX IF NOT EXISTS idx_lemmas_lemma ON lemmas(lemma);
CREATE INDEX IF NOT EXISTS idx_lemmas_stem ON lemmas(stem);
`

// Migrate creates the thesaurus tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "lexicon: sqlite migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Import replaces the stored thesaurus with groups in one transaction and
// returns the number of synsets written. Groups with no usable lemma are
// skipped. Re-importing the same groups leaves the store unchanged.
func (s *SQLiteStore) Import(ctx context.Context, groups []Group) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "lexicon: sqlite begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"lemmas", "synsets"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, eris.Wrapf(err, "lexicon: sqlite clear %s", table)
		}
	}

	written := 0
	for _, g := range groups {
		lemmas := normalizeGroup(g)
		if len(lemmas) == 0 {
			continue
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO synsets DEFAULT VALUES`)
		if err != nil {
			return 0, eris.Wrap(err, "lexicon: sqlite insert synset")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, eris.Wrap(err, "lexicon: sqlite synset id")
		}

		for _, l := range lemmas {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO lemmas (synset_id, lemma, stem) VALUES (?, ?, ?)`,
				id, l, Stem(l),
			); err != nil {
				return 0, eris.Wrapf(err, "lexicon: sqlite insert lemma %q", l)
			}
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "lexicon: sqlite commit")
	}
	return written, nil
}

// Count returns the number of synsets and lemma rows stored.
func (s *SQLiteStore) Count(ctx context.Context) (synsets, lemmas int, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM synsets), (SELECT COUNT(*) FROM lemmas)`)
	if err := row.Scan(&synsets, &lemmas); err != nil {
		return 0, 0, eris.Wrap(err, "lexicon: sqlite count")
	}
	return synsets, lemmas, nil
}

const synonymsByLemma = `
SELECT DISTINCT l2.lemma
FROM lemmas l1
JOIN lemmas l2 ON l2.synset_id = l1.synset_id
WHERE l1.lemma = ?`

const synonymsByStem = `
SELECT DISTINCT l2.lemma
FROM lemmas l1
JOIN lemmas l2 ON l2.synset_id = l1.synset_id
WHERE l1.stem = ?`

// SynonymsOf returns the lemmas sharing a synset with word, falling back to
// a stem match when stemming is enabled.
func (s *SQLiteStore) SynonymsOf(ctx context.Context, word string) (Set, error) {
	key := Normalize(word)
	if key == "" {
		return Set{}, nil
	}

	out, err := s.query(ctx, synonymsByLemma, key)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 && s.stemming {
		return s.query(ctx, synonymsByStem, Stem(key))
	}
	return out, nil
}

func (s *SQLiteStore) query(ctx context.Context, q, arg string) (Set, error) {
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, eris.Wrapf(err, "lexicon: sqlite lookup %q", arg)
	}
	defer rows.Close()

	out := Set{}
	for rows.Next() {
		var lemma string
		if err := rows.Scan(&lemma); err != nil {
			return nil, eris.Wrap(err, "lexicon: sqlite scan lemma")
		}
		out[lemma] = struct{}{}
	}
	return out, eris.Wrap(rows.Err(), "lexicon: sqlite rows")
}
