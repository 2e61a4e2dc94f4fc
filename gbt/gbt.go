// Package gbt evaluates gradient-boosted regression tree ensembles exported
// as JSON artifacts at training time.
package gbt

import (
	"encoding/json"
	"fmt"
)

// Node is one split or leaf in a regression tree.
type Node struct {
	Feature   int      `json:"feature,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Left      *Node    `json:"left,omitempty"`
	Right     *Node    `json:"right,omitempty"`
	Leaf      *float64 `json:"leaf,omitempty"`
}

func (n *Node) isLeaf() bool { return n.Leaf != nil }

func (n *Node) eval(features []float64) float64 {
	for !n.isLeaf() {
		if features[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return *n.Leaf
}

func (n *Node) validate(numFeatures int) error {
	if n.isLeaf() {
		return nil
	}
	if n.Left == nil || n.Right == nil {
		return fmt.Errorf("split node on feature %d is missing a child", n.Feature)
	}
	if n.Feature < 0 || n.Feature >= numFeatures {
		return fmt.Errorf("split node references feature %d, model has %d features", n.Feature, numFeatures)
	}
	if err := n.Left.validate(numFeatures); err != nil {
		return err
	}
	return n.Right.validate(numFeatures)
}

// Model is a boosted ensemble: prediction is the base score plus the sum of
// every tree's leaf value.
type Model struct {
	Name        string  `json:"name"`
	NumFeatures int     `json:"num_features"`
	BaseScore   float64 `json:"base_score"`
	Trees       []*Node `json:"trees"`
}

func Parse(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("error unmarshaling model artifact: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %q: %w", m.Name, err)
	}
	return &m, nil
}

func (m *Model) Validate() error {
	if m.NumFeatures < 1 {
		return fmt.Errorf("model declares %d features", m.NumFeatures)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	for i, tree := range m.Trees {
		if tree == nil {
			return fmt.Errorf("tree %d is empty", i)
		}
		if err := tree.validate(m.NumFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (m *Model) Predict(features []float64) (float64, error) {
	if len(features) != m.NumFeatures {
		return 0, fmt.Errorf("model %q expects %d features, got %d", m.Name, m.NumFeatures, len(features))
	}

	sum := m.BaseScore
	for _, tree := range m.Trees {
		sum += tree.eval(features)
	}
	return sum, nil
}
