package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tgienger/todo/internal/models"
)

// SchemaVersion is written into every saved document
const SchemaVersion = 1

// Document is the serialized form of a collection
type Document struct {
	Schema  int               `json:"schema" yaml:"schema"`
	SavedAt time.Time         `json:"saved_at" yaml:"saved_at"`
	Tasks   models.Collection `json:"tasks" yaml:"tasks"`
}

// Codec converts collections to and from bytes
type Codec interface {
	Name() string
	Encode(c models.Collection) ([]byte, error)
	Decode(b []byte) (models.Collection, error)
}

// CodecFor returns the codec for a format name ("json" or "yaml")
func CodecFor(format string) (Codec, error) {
	switch format {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}
}

var timeNow = func() time.Time { return time.Now().UTC() }

func newDocument(c models.Collection) Document {
	if c == nil {
		c = models.Collection{}
	}
	return Document{Schema: SchemaVersion, SavedAt: timeNow(), Tasks: c}
}

func checkSchema(doc Document) error {
	if doc.Schema > SchemaVersion {
		return fmt.Errorf("saved data uses schema %d, newer than supported %d", doc.Schema, SchemaVersion)
	}
	return nil
}

// JSON encodes collections as indented JSON. Decode also accepts a bare
// array of tasks, the layout used by the browser version of the app.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Encode(c models.Collection) ([]byte, error) {
	return json.MarshalIndent(newDocument(c), "", "  ")
}

func (JSON) Decode(b []byte) (models.Collection, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var tasks models.Collection
		if err := json.Unmarshal(b, &tasks); err != nil {
			return nil, fmt.Errorf("decode task list: %w", err)
		}
		return normalize(tasks), nil
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := checkSchema(doc); err != nil {
		return nil, err
	}
	return normalize(doc.Tasks), nil
}

// YAML encodes collections as YAML documents
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Encode(c models.Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(c)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAML) Decode(b []byte) (models.Collection, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var tasks models.Collection
		if err := node.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("decode task list: %w", err)
		}
		return normalize(tasks), nil
	}
	var doc Document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := checkSchema(doc); err != nil {
		return nil, err
	}
	return normalize(doc.Tasks), nil
}

// normalize replaces missing slices with empty ones so decoded tasks look
// like tasks built by the engine
func normalize(c models.Collection) models.Collection {
	if c == nil {
		return models.Collection{}
	}
	for i := range c {
		if c[i].Subtasks == nil {
			c[i].Subtasks = []models.Subtask{}
		}
		if c[i].Tags == nil {
			c[i].Tags = []string{}
		}
	}
	return c
}
