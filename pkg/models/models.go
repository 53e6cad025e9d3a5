package models

// PostLink is the absolute permalink of a post or reel
type PostLink = string

// LinkSet accumulates unique post links. It only grows; Links returns them in
// first-discovery order.
type LinkSet struct {
	seen  map[PostLink]struct{}
	order []PostLink
}

// NewLinkSet creates an empty link set
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[PostLink]struct{})}
}

// Add inserts link and reports whether it was new. Empty links are ignored.
func (s *LinkSet) Add(link PostLink) bool {
	if link == "" {
		return false
	}
	if _, ok := s.seen[link]; ok {
		return false
	}
	s.seen[link] = struct{}{}
	s.order = append(s.order, link)
	return true
}

// Len returns the number of unique links
func (s *LinkSet) Len() int {
	return len(s.order)
}

// Links returns a copy of the collected links
func (s *LinkSet) Links() []PostLink {
	out := make([]PostLink, len(s.order))
	copy(out, s.order)
	return out
}

// ScrapeResult is the outcome of extracting one post's caption.
// Content is set only on success, Error only on failure.
type ScrapeResult struct {
	URL     PostLink `json:"url"`
	Content *string  `json:"content"`
	Success bool     `json:"success"`
	Error   *string  `json:"error"`
}

// Succeeded builds a successful result
func Succeeded(url PostLink, content string) ScrapeResult {
	return ScrapeResult{URL: url, Content: &content, Success: true}
}

// Failed builds a failed result with a human-readable reason
func Failed(url PostLink, reason string) ScrapeResult {
	return ScrapeResult{URL: url, Success: false, Error: &reason}
}

// ContentOrEmpty returns the caption or "" when absent
func (r ScrapeResult) ContentOrEmpty() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// ErrorOrEmpty returns the failure reason or "" when absent
func (r ScrapeResult) ErrorOrEmpty() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// ScrapeBatch holds one result per input URL, in input order
type ScrapeBatch []ScrapeResult

// Succeeded counts successful results
func (b ScrapeBatch) Succeeded() int {
	n := 0
	for _, r := range b {
		if r.Success {
			n++
		}
	}
	return n
}

// Failed counts failed results
func (b ScrapeBatch) Failed() int {
	return len(b) - b.Succeeded()
}
