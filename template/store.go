package template

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/templet-xyz/go-templet/cache"
	"github.com/templet-xyz/go-templet/schema"
)

// Store persists templates in a SQLite database. A stored template carries
// every identity component, so loading it back reproduces the same hash the
// original had when saved.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) a template store at the given path. Use
// ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS templates (
		name TEXT NOT NULL,
		version TEXT NOT NULL,
		type_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		readme TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT '[]',
		model TEXT NOT NULL,
		markup TEXT NOT NULL,
		logic TEXT NOT NULL DEFAULT '',
		logic_omitted INTEGER NOT NULL DEFAULT 1,
		request_sample TEXT,
		response_sample TEXT,
		samples TEXT,
		hash TEXT NOT NULL,
		PRIMARY KEY (name, version)
	);`
	_, err := s.db.Exec(ddl)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a template. The stored hash is the template's identity
// digest at save time.
func (s *Store) Save(t *Template) error {
	hash, err := t.Hash()
	if err != nil {
		return err
	}
	model, err := t.Model().ToJSON()
	if err != nil {
		return err
	}
	keywords, err := json.Marshal(t.Keywords())
	if err != nil {
		return err
	}
	requestSample, err := marshalNullable(t.requestSample)
	if err != nil {
		return err
	}
	responseSample, err := marshalNullable(t.responseSample)
	if err != nil {
		return err
	}
	samples, err := marshalNullable(t.samplesByLocale)
	if err != nil {
		return err
	}
	logic, omitted := t.Logic()

	_, err = s.db.Exec(`
	INSERT INTO templates
		(name, version, type_name, description, readme, keywords, model,
		 markup, logic, logic_omitted, request_sample, response_sample, samples, hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name, version) DO UPDATE SET
		type_name = excluded.type_name,
		description = excluded.description,
		readme = excluded.readme,
		keywords = excluded.keywords,
		model = excluded.model,
		markup = excluded.markup,
		logic = excluded.logic,
		logic_omitted = excluded.logic_omitted,
		request_sample = excluded.request_sample,
		response_sample = excluded.response_sample,
		samples = excluded.samples,
		hash = excluded.hash`,
		t.Name(), t.Version(), t.TypeName(), t.Description(), t.Readme(),
		string(keywords), string(model), t.MarkupSource(), logic,
		boolToInt(omitted), requestSample, responseSample, samples, hash)
	if err != nil {
		return fmt.Errorf("save template %s@%s: %w", t.Name(), t.Version(), err)
	}
	return nil
}

// Load reconstructs a template by name and version. The grammar is not
// rebuilt automatically; call BuildGrammar on the result before parsing.
func (s *Store) Load(name, version string) (*Template, error) {
	row := s.db.QueryRow(`
	SELECT type_name, description, readme, keywords, model, markup,
	       logic, logic_omitted, request_sample, response_sample, samples
	FROM templates WHERE name = ? AND version = ?`, name, version)

	var typeName, description, readme, keywordsJSON, modelJSON, markupSrc, logic string
	var logicOmitted int
	var requestSample, responseSample, samples sql.NullString
	err := row.Scan(&typeName, &description, &readme, &keywordsJSON, &modelJSON,
		&markupSrc, &logic, &logicOmitted, &requestSample, &responseSample, &samples)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s@%s not found", name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %s@%s: %w", name, version, err)
	}

	model, err := schema.FromJSON([]byte(modelJSON))
	if err != nil {
		return nil, err
	}
	t, err := New(name, version, model, markupSrc, typeName)
	if err != nil {
		return nil, err
	}
	t.SetDescription(description)
	var keywords []string
	if err := json.Unmarshal([]byte(keywordsJSON), &keywords); err != nil {
		return nil, fmt.Errorf("template %s@%s keywords: %w", name, version, err)
	}
	t.SetKeywords(keywords)
	t.SetReadme(readme)
	if logicOmitted == 0 {
		t.SetLogic(logic)
	}
	if requestSample.Valid {
		var sample map[string]any
		if err := json.Unmarshal([]byte(requestSample.String), &sample); err != nil {
			return nil, err
		}
		t.SetRequestSample(sample)
	}
	if responseSample.Valid {
		var sample map[string]any
		if err := json.Unmarshal([]byte(responseSample.String), &sample); err != nil {
			return nil, err
		}
		t.SetResponseSample(sample)
	}
	if samples.Valid {
		var byLocale map[string]string
		if err := json.Unmarshal([]byte(samples.String), &byLocale); err != nil {
			return nil, err
		}
		for locale, text := range byLocale {
			t.SetSample(locale, text)
		}
	}
	return t, nil
}

// LoadBuilt loads a template and ensures its grammar is compiled, reusing
// a cached compiled form keyed by identity hash when available.
func (s *Store) LoadBuilt(name, version string, grammars *cache.GrammarCache) (*Template, error) {
	t, err := s.Load(name, version)
	if err != nil {
		return nil, err
	}
	hash, err := t.Hash()
	if err != nil {
		return nil, err
	}
	if cached, ok := grammars.Get(hash); ok {
		t.registry.install(cached)
		return t, nil
	}
	if err := t.BuildGrammar(); err != nil {
		return nil, err
	}
	compiled, _ := t.registry.Compiled()
	grammars.Put(hash, &cache.Compiled{
		Grammar:        compiled,
		Source:         t.registry.Source(),
		HasExpressions: t.registry.HasExpressions(),
	})
	return t, nil
}

// Hashes lists stored identity hashes keyed by "name@version".
func (s *Store) Hashes() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT name, version, hash FROM templates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, version, hash string
		if err := rows.Scan(&name, &version, &hash); err != nil {
			return nil, err
		}
		out[name+"@"+version] = hash
	}
	return out, rows.Err()
}

func marshalNullable(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return nil, nil
		}
	case map[string]string:
		if m == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
