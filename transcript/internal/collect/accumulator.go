package collect

// Entry is one transcript row: the label rendered for the row (usually a
// timestamp such as "0:05") and the caption text next to it.
type Entry struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Accumulator is an insertion-ordered map of key to text. A key keeps the
// position of its first insertion; later writes replace the text only.
//
// An Accumulator is owned by a single run and is not safe for concurrent use.
type Accumulator struct {
	order []string
	text  map[string]string
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{text: make(map[string]string)}
}

// Put inserts or overwrites key. It reports whether key was new.
func (a *Accumulator) Put(key, text string) bool {
	_, seen := a.text[key]
	if !seen {
		a.order = append(a.order, key)
	}
	a.text[key] = text
	return !seen
}

// Get returns the text stored under key.
func (a *Accumulator) Get(key string) (string, bool) {
	t, ok := a.text[key]
	return t, ok
}

// Len returns the number of distinct keys.
func (a *Accumulator) Len() int { return len(a.order) }

// Entries returns the entries in first-seen order.
func (a *Accumulator) Entries() []Entry {
	out := make([]Entry, len(a.order))
	for i, k := range a.order {
		out[i] = Entry{Key: k, Text: a.text[k]}
	}
	return out
}
