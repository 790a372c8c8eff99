package content

// Shop lists the items a location sells. Prices come from the item table.
type Shop struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Greeting string   `json:"greeting,omitempty"`
	Items    []string `json:"items"`
}

// Puzzle is a content-authored riddle gate. The engine only checks existence
// and answers; presentation owns the interaction.
type Puzzle struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	Solution string `json:"solution"`
	Hint     string `json:"hint,omitempty"`
}
