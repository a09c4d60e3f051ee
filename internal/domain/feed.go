package domain

import (
	"strings"
	"time"
)

// Priority is an ordered urgency category for feed items.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityDefault: "default",
	PriorityMedium:  "medium",
	PriorityHigh:    "high",
	PriorityUrgent:  "urgent",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "default"
}

// MarshalJSON encodes the priority as its lower-case name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes a lower-case priority name; unknown names map to default.
func (p *Priority) UnmarshalJSON(data []byte) error {
	*p = ParsePriority(strings.Trim(string(data), `"`))
	return nil
}

// ParsePriority maps a name to a Priority. Unknown names map to PriorityDefault.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityDefault
	}
}

// Less reports whether p is strictly lower urgency than other.
func (p Priority) Less(other Priority) bool {
	return p < other
}

// FeedItem is a single timestamped report from a social-media or
// official-update feed. Items are immutable once produced for a given fetch;
// no identity reconciliation happens across fetches.
type FeedItem struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Priority  Priority  `json:"priority"`
	Location  string    `json:"location,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
}

// urgencyKeywords is the fixed vocabulary used to flag priority alerts.
var urgencyKeywords = []string{
	"urgent",
	"sos",
	"emergency",
	"trapped",
	"critical",
	"help needed",
	"life-threatening",
}

// DetectPriorityAlerts filters items to those whose content contains any
// urgency keyword, case-insensitive. Pure function over already-fetched items.
func DetectPriorityAlerts(items []FeedItem) []FeedItem {
	alerts := make([]FeedItem, 0)
	for _, item := range items {
		content := strings.ToLower(item.Content)
		for _, kw := range urgencyKeywords {
			if strings.Contains(content, kw) {
				alerts = append(alerts, item)
				break
			}
		}
	}
	return alerts
}

// MatchesTags reports whether any keyword contains any requested tag as a
// case-insensitive substring. An empty tag list matches everything.
func MatchesTags(keywords, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if strings.Contains(kw, tag) {
				return true
			}
		}
	}
	return false
}
