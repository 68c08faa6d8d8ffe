package models

import (
	"time"

	"agrimarket-backend/internal/utils"
)

// NotificationType represents notification types
type NotificationType string

const (
	NotificationTypeOrder     NotificationType = "order"
	NotificationTypeDelivery  NotificationType = "delivery"
	NotificationTypeMessage   NotificationType = "message"
	NotificationTypePromotion NotificationType = "promotion"
	NotificationTypeSystem    NotificationType = "system"
)

// NotificationTypes lists every notification type
var NotificationTypes = []NotificationType{
	NotificationTypeOrder, NotificationTypeDelivery, NotificationTypeMessage,
	NotificationTypePromotion, NotificationTypeSystem,
}

// NotificationStatus represents read state
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// NotificationPriority represents urgency
type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "high"
	PriorityMedium NotificationPriority = "medium"
	PriorityLow    NotificationPriority = "low"
)

// Notification tabs
const (
	NotificationTabAll       = "all"
	NotificationTabUnread    = "unread"
	NotificationTabRead      = "read"
	NotificationTabImportant = "important"
)

// Notification represents a notification shown in the dashboards
type Notification struct {
	ID        string               `json:"id"`
	UserID    string               `json:"userId"`
	Type      NotificationType     `json:"type"`
	Status    NotificationStatus   `json:"status"`
	Priority  NotificationPriority `json:"priority"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Sender    *string              `json:"sender,omitempty"`
	Link      *string              `json:"link,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	ReadAt    *time.Time           `json:"readAt,omitempty"`
}

// IsValidNotificationType checks a type against the known set
func IsValidNotificationType(t NotificationType) bool {
	return utils.Contains(NotificationTypes, t)
}

// NotificationFilter is the tab/type/priority/status selection of the notification center
type NotificationFilter struct {
	Tab      string
	Type     string
	Priority string
	Status   string
}

func matchesOrAll(want, got string) bool {
	return want == "" || want == "all" || want == got
}

func (f NotificationFilter) matchesTab(n Notification) bool {
	switch f.Tab {
	case NotificationTabUnread:
		return n.Status == NotificationUnread
	case NotificationTabRead:
		return n.Status == NotificationRead
	case NotificationTabImportant:
		return n.Priority == PriorityHigh
	default:
		return true
	}
}

// Matches is the conjunction of the tab, type, priority and status predicates
func (f NotificationFilter) Matches(n Notification) bool {
	return f.matchesTab(n) &&
		matchesOrAll(f.Type, string(n.Type)) &&
		matchesOrAll(f.Priority, string(n.Priority)) &&
		matchesOrAll(f.Status, string(n.Status))
}

// Apply returns the notifications selected by the filter, preserving order
func (f NotificationFilter) Apply(notifications []Notification) []Notification {
	out := make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// NotificationCounts summarizes a user's notifications for tab badges
type NotificationCounts struct {
	Total     int                      `json:"total"`
	Unread    int                      `json:"unread"`
	Important int                      `json:"important"`
	ByType    map[NotificationType]int `json:"byType"`
}

// CountNotifications computes the tab badge counters
func CountNotifications(notifications []Notification) NotificationCounts {
	counts := NotificationCounts{Total: len(notifications), ByType: map[NotificationType]int{}}
	for _, n := range notifications {
		if n.Status == NotificationUnread {
			counts.Unread++
		}
		if n.Priority == PriorityHigh {
			counts.Important++
		}
		counts.ByType[n.Type]++
	}
	return counts
}

// NotificationPage is a filtered page of notifications
type NotificationPage struct {
	Items  []Notification     `json:"items"`
	Total  int                `json:"total"`
	Counts NotificationCounts `json:"counts"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// Delivery frequencies
const (
	FrequencyInstant = "instant"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
)

// Delivery channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// NotificationChannels lists every delivery channel
var NotificationChannels = []string{ChannelEmail, ChannelSMS, ChannelPush}

// QuietHours suppresses non-urgent deliveries during a window
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// NotificationPreferences is the per-user preference tree: channel -> type -> enabled
type NotificationPreferences struct {
	Channels   map[string]map[NotificationType]bool `json:"channels"`
	Frequency  string                               `json:"frequency"`
	QuietHours QuietHours                           `json:"quietHours"`
}

// DefaultNotificationPreferences enables everything except SMS promotions
func DefaultNotificationPreferences() NotificationPreferences {
	prefs := NotificationPreferences{
		Channels:   map[string]map[NotificationType]bool{},
		Frequency:  FrequencyInstant,
		QuietHours: QuietHours{Enabled: false, Start: "22:00", End: "07:00"},
	}
	for _, channel := range NotificationChannels {
		prefs.Channels[channel] = map[NotificationType]bool{}
		for _, t := range NotificationTypes {
			prefs.Channels[channel][t] = true
		}
	}
	prefs.Channels[ChannelSMS][NotificationTypePromotion] = false
	return prefs
}

// QuietHoursUpdate changes only the quiet hours fields that are present
type QuietHoursUpdate struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
}

// PreferencesUpdate is a partial update of the preference tree
type PreferencesUpdate struct {
	Channels   map[string]map[NotificationType]bool `json:"channels,omitempty"`
	Frequency  *string                              `json:"frequency,omitempty"`
	QuietHours *QuietHoursUpdate                    `json:"quietHours,omitempty"`
}

// Merge applies an update onto a copy of the preferences and validates the result
func (p NotificationPreferences) Merge(update PreferencesUpdate) (NotificationPreferences, error) {
	merged := NotificationPreferences{
		Channels:   map[string]map[NotificationType]bool{},
		Frequency:  p.Frequency,
		QuietHours: p.QuietHours,
	}
	for channel, types := range p.Channels {
		merged.Channels[channel] = map[NotificationType]bool{}
		for t, enabled := range types {
			merged.Channels[channel][t] = enabled
		}
	}

	var v utils.Validator
	for channel, types := range update.Channels {
		if !utils.Contains(NotificationChannels, channel) {
			v.Add("channels", "unknown channel: "+channel)
			continue
		}
		if merged.Channels[channel] == nil {
			merged.Channels[channel] = map[NotificationType]bool{}
		}
		for t, enabled := range types {
			if !IsValidNotificationType(t) {
				v.Add("channels", "unknown notification type: "+string(t))
				continue
			}
			merged.Channels[channel][t] = enabled
		}
	}
	if update.Frequency != nil {
		v.OneOf("frequency", *update.Frequency, FrequencyInstant, FrequencyDaily, FrequencyWeekly)
		merged.Frequency = *update.Frequency
	}
	if qh := update.QuietHours; qh != nil {
		if qh.Enabled != nil {
			merged.QuietHours.Enabled = *qh.Enabled
		}
		if qh.Start != nil {
			v.Clock("quietHours.start", *qh.Start)
			merged.QuietHours.Start = *qh.Start
		}
		if qh.End != nil {
			v.Clock("quietHours.end", *qh.End)
			merged.QuietHours.End = *qh.End
		}
	}

	if err := v.Err(); err != nil {
		return p, err
	}
	return merged, nil
}

// Allows reports whether a notification type may be delivered on a channel
func (p NotificationPreferences) Allows(channel string, t NotificationType) bool {
	types, ok := p.Channels[channel]
	if !ok {
		return false
	}
	return types[t]
}
