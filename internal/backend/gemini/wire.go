package gemini

// generateRequest is the generateContent request body:
// {"contents":[{"parts":[{"text":"..."}]}]}
type generateRequest struct {
	Contents []content `json:"contents"`
}

// generateResponse is the subset of the generateContent reply we read:
// {"candidates":[{"content":{"parts":[{"text":"..."}]}}]}
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// firstText returns the text of the first part of the first candidate.
// A null or empty part counts as missing.
func (r generateResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := r.Candidates[0].Content.Parts[0].Text
	return text, text != ""
}
