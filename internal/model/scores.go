package model

// ScoreEntry is one provider's score for a consumer.
type ScoreEntry struct {
	ProviderID string
	Score      float64
}

// ScoreMap maps provider id to score, remembering insertion order.
type ScoreMap struct {
	order []string
	index map[string]int
	score []float64
}

// NewScoreMap creates an empty ScoreMap sized for n providers.
func NewScoreMap(n int) *ScoreMap {
	return &ScoreMap{
		order: make([]string, 0, n),
		index: make(map[string]int, n),
		score: make([]float64, 0, n),
	}
}

// Set records a score. Re-setting an id keeps its original position.
func (m *ScoreMap) Set(providerID string, score float64) {
	if i, ok := m.index[providerID]; ok {
		m.score[i] = score
		return
	}
	m.index[providerID] = len(m.order)
	m.order = append(m.order, providerID)
	m.score = append(m.score, score)
}

// Get returns the score for a provider id.
func (m *ScoreMap) Get(providerID string) (float64, bool) {
	i, ok := m.index[providerID]
	if !ok {
		return 0, false
	}
	return m.score[i], true
}

// Len returns the number of providers scored.
func (m *ScoreMap) Len() int { return len(m.order) }

// Entries returns the scores in insertion order.
func (m *ScoreMap) Entries() []ScoreEntry {
	out := make([]ScoreEntry, len(m.order))
	for i, id := range m.order {
		out[i] = ScoreEntry{ProviderID: id, Score: m.score[i]}
	}
	return out
}
