package model

// Quote is a statement attributed to a named speaker
type Quote struct {
	Speaker string `json:"speaker"` // Subject token text (person, organization or place)
	Verb    string `json:"verb"`    // Reporting verb the speaker governs
	Text    string `json:"text"`    // Concatenated quoted span
}

// NewsItem is one unit of input text
type NewsItem struct {
	Index int    `json:"index"` // Position in the input (0-based)
	Text  string `json:"text"`
}
