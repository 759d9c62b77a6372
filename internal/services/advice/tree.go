package advice

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

//go:embed questions.json
var questionsJSON []byte

var ErrUnknownPath = errors.New("question tree path does not lead to a question set")

// Question is one field of a leaf's question set.
type Question struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// Node is a category. A node with a prompt key is a leaf and carries the
// questions asked before advice is generated.
type Node struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	PromptKey     string     `json:"promptKey,omitempty"`
	Questions     []Question `json:"questions,omitempty"`
	Subcategories []Node     `json:"subcategories,omitempty"`
}

func (n *Node) IsLeaf() bool { return n.PromptKey != "" }

type Tree struct {
	Categories []Node `json:"categories"`
}

// LoadTree parses the embedded question tree.
func LoadTree() (*Tree, error) {
	return ParseTree(questionsJSON)
}

// ParseTree parses a question tree and checks its shape: every leaf has
// questions, every branch has children, and no leaf has both.
func ParseTree(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse question tree: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, errors.New("question tree has no categories")
	}
	var check func(path string, nodes []Node) error
	check = func(path string, nodes []Node) error {
		for i := range nodes {
			n := &nodes[i]
			p := path + "/" + n.ID
			switch {
			case n.IsLeaf() && len(n.Subcategories) > 0:
				return fmt.Errorf("%s: leaf has subcategories", p)
			case n.IsLeaf() && len(n.Questions) == 0:
				return fmt.Errorf("%s: leaf has no questions", p)
			case !n.IsLeaf() && len(n.Subcategories) == 0:
				return fmt.Errorf("%s: branch has no subcategories", p)
			}
			for _, q := range n.Questions {
				if q.Type == TypeSelect && len(q.Options) == 0 {
					return fmt.Errorf("%s/%s: select question has no options", p, q.ID)
				}
			}
			if err := check(p, n.Subcategories); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check("", t.Categories); err != nil {
		return nil, err
	}
	return &t, nil
}

// Leaf follows path from the root and returns the leaf it ends on.
func (t *Tree) Leaf(path []string) (*Node, error) {
	nodes := t.Categories
	var cur *Node
	for _, id := range path {
		cur = nil
		for i := range nodes {
			if nodes[i].ID == id {
				cur = &nodes[i]
				break
			}
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownPath, path)
		}
		nodes = cur.Subcategories
	}
	if cur == nil || !cur.IsLeaf() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPath, path)
	}
	return cur, nil
}

// Leaves returns every leaf in depth-first order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for i := range nodes {
			if nodes[i].IsLeaf() {
				out = append(out, &nodes[i])
				continue
			}
			walk(nodes[i].Subcategories)
		}
	}
	walk(t.Categories)
	return out
}

// ValidateAnswers checks every question of the leaf and returns the trimmed
// answers. Answers to unknown questions are rejected.
func (n *Node) ValidateAnswers(answers map[string]string) (map[string]string, error) {
	known := make(map[string]struct{}, len(n.Questions))
	out := make(map[string]string, len(n.Questions))
	for _, q := range n.Questions {
		known[q.ID] = struct{}{}
		v, err := validateAnswer(q.ID, q.Type, q.Options, answers[q.ID])
		if err != nil {
			return nil, err
		}
		out[q.ID] = v
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			return nil, &ValidationError{Field: id, Message: "is not a question in this section"}
		}
	}
	return out, nil
}
