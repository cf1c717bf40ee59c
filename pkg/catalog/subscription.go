package catalog

// NotificationMode selects whether new uploads of a channel are announced.
type NotificationMode int

const (
	NotificationModeDisabled NotificationMode = 0
	NotificationModeEnabled  NotificationMode = 1
)

// Subscription is a cached mirror of a subscribed channel.
type Subscription struct {
	UID              int64            `db:"uid" json:"uid"`
	ServiceID        int              `db:"service_id" json:"service_id"`
	URL              *string          `db:"url" json:"url"`
	Name             *string          `db:"name" json:"name"`
	AvatarURL        *string          `db:"avatar_url" json:"avatar_url,omitempty"`
	SubscriberCount  *int64           `db:"subscriber_count" json:"subscriber_count,omitempty"`
	Description      *string          `db:"description" json:"description,omitempty"`
	NotificationMode NotificationMode `db:"notification_mode" json:"notification_mode"`
}

// NewSubscription creates an unsaved subscription with notifications disabled.
func NewSubscription(info ChannelInfo) *Subscription {
	return &Subscription{
		ServiceID:       info.ServiceID,
		URL:             Ptr(info.URL),
		Name:            Ptr(info.Name),
		AvatarURL:       info.AvatarURL,
		Description:     info.Description,
		SubscriberCount: info.SubscriberCount,
	}
}

// SetData replaces the refreshable fields. Identity and notification mode are
// left alone; nil values overwrite with unknown.
func (s *Subscription) SetData(name, avatarURL, description *string, subscriberCount *int64) {
	s.Name = name
	s.AvatarURL = avatarURL
	s.Description = description
	s.SubscriberCount = subscriberCount
}

// SetDataFrom applies SetData with the content of fetched channel info.
func (s *Subscription) SetDataFrom(info ChannelInfo) {
	s.SetData(Ptr(info.Name), info.AvatarURL, info.Description, info.SubscriberCount)
}

// Key returns the (service, url) natural key.
func (s *Subscription) Key() NaturalKey {
	return NaturalKey{ServiceID: s.ServiceID, URL: Deref(s.URL)}
}

// ToChannelInfoItem projects the subscription for display.
func (s *Subscription) ToChannelInfoItem() ChannelInfoItem {
	item := ChannelInfoItem{
		ServiceID:    s.ServiceID,
		URL:          Deref(s.URL),
		Name:         Deref(s.Name),
		ThumbnailURL: s.AvatarURL,
		Description:  s.Description,
	}
	if s.SubscriberCount != nil {
		item.SubscriberCount = *s.SubscriberCount
	}
	return item
}
