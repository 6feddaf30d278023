package template

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// identity is the stable serialized form the hash covers. Map keys sort
// during JSON marshaling and struct fields keep declaration order, so the
// digest is independent of construction order and insignificant whitespace
// while remaining sensitive to every component's content.
type identity struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Readme          string            `json:"readme"`
	Keywords        []string          `json:"keywords"`
	RequestSample   map[string]any    `json:"requestSample"`
	ResponseSample  map[string]any    `json:"responseSample"`
	SamplesByLocale map[string]string `json:"samplesByLocale"`
	Model           json.RawMessage   `json:"model"`
	Grammar         string            `json:"grammar"`
	Logic           string            `json:"logic"`
	LogicOmitted    bool              `json:"logicOmitted"`
}

// Hash computes the template's identity digest. The digest covers schema
// declarations, the normalized annotated markup source, logic source (or
// its omission, via the logicOmitted flag), and all metadata. Two templates
// built from different sources but equal content hash identically; dropping
// logic yields a different but reproducible hash. The result is cached
// until a structural mutation invalidates it.
func (t *Template) Hash() (string, error) {
	if t.hash != "" {
		return t.hash, nil
	}
	model, err := t.model.ToJSON()
	if err != nil {
		return "", err
	}
	id := identity{
		Name:            t.name,
		Version:         t.version,
		Description:     t.description,
		Readme:          t.readme,
		Keywords:        t.keywords,
		RequestSample:   t.requestSample,
		ResponseSample:  t.responseSample,
		SamplesByLocale: t.samplesByLocale,
		Model:           model,
		Grammar:         t.MarkupSource(),
		Logic:           t.logic,
		LogicOmitted:    t.logicOmitted,
	}
	data, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	t.hash = hex.EncodeToString(sum[:])
	return t.hash, nil
}
