package model

// Item is the domain model for a todo entry.
// IDs are handed out by the store, never by callers.
type Item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// State is everything the store owns: the ordered items and the next id to mint.
type State struct {
	Items  []Item
	NextID int
}

var defaultItems = []Item{
	{ID: 1, Title: "Learn Vue 3 Composition API", Done: true},
	{ID: 2, Title: "Understand Data Store Pattern", Done: false},
	{ID: 3, Title: "Build awesome TypeScript apps", Done: false},
}

// DefaultState returns a fresh copy of the built-in collection.
// Callers may mutate the result freely.
func DefaultState() State {
	return State{
		Items:  CloneItems(defaultItems),
		NextID: len(defaultItems) + 1,
	}
}

// Clone deep-copies s.
func (s State) Clone() State {
	return State{Items: CloneItems(s.Items), NextID: s.NextID}
}

// CloneItems copies items into a new, never-nil slice.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
