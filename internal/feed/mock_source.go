package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
)

// MockSocialSource generates deterministic sample reports for a disaster,
// standing in for a real social-media API during development and demos.
type MockSocialSource struct {
	clock clockwork.Clock
}

// NewMockSocialSource creates a mock source using the real clock.
func NewMockSocialSource() *MockSocialSource {
	return &MockSocialSource{clock: clockwork.NewRealClock()}
}

// NewMockSocialSourceWithClock creates a mock source with an injected time
// source for deterministic timestamps in tests.
func NewMockSocialSourceWithClock(clock clockwork.Clock) *MockSocialSource {
	return &MockSocialSource{clock: clock}
}

// mockReport is one template the source instantiates per disaster.
type mockReport struct {
	user     string
	content  string
	priority domain.Priority
	location string
	keywords []string
	age      time.Duration
}

var mockReports = []mockReport{
	{
		user:     "citizen_helper1",
		content:  "URGENT: Need food and water in downtown area. Families with children stranded.",
		priority: domain.PriorityUrgent,
		location: "Downtown",
		keywords: []string{"food", "water", "urgent", "families"},
		age:      15 * time.Minute,
	},
	{
		user:     "local_volunteer",
		content:  "Medical supplies needed at the evacuation shelter on 5th street.",
		priority: domain.PriorityHigh,
		location: "5th Street Shelter",
		keywords: []string{"medical", "supplies", "shelter"},
		age:      45 * time.Minute,
	},
	{
		user:     "rescue_team_7",
		content:  "Road cleared on Main Ave, response vehicles can now pass.",
		priority: domain.PriorityMedium,
		location: "Main Ave",
		keywords: []string{"road", "cleared", "access"},
		age:      2 * time.Hour,
	},
	{
		user:     "neighbor_watch",
		content:  "Offering shelter for up to 6 people, dry clothes and hot meals available.",
		priority: domain.PriorityDefault,
		location: "Riverside",
		keywords: []string{"shelter", "offer", "meals", "clothes"},
		age:      3 * time.Hour,
	},
	{
		user:     "first_responder",
		content:  "SOS relayed: elderly couple trapped on second floor, water still rising.",
		priority: domain.PriorityUrgent,
		location: "Oak Lane",
		keywords: []string{"sos", "trapped", "rescue", "flood"},
		age:      5 * time.Minute,
	},
}

// Reports returns the sample reports stamped for disasterID, newest last.
func (m *MockSocialSource) Reports(_ context.Context, disasterID string) ([]domain.FeedItem, error) {
	now := m.clock.Now().UTC()
	items := make([]domain.FeedItem, 0, len(mockReports))
	for i, r := range mockReports {
		items = append(items, domain.FeedItem{
			ID:        fmt.Sprintf("%s-social-%d", disasterID, i+1),
			Source:    r.user,
			Content:   r.content,
			Timestamp: now.Add(-r.age),
			Priority:  r.priority,
			Location:  r.location,
			Keywords:  r.keywords,
		})
	}
	return items, nil
}
