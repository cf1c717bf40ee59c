package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func channelInfo() ChannelInfo {
	return ChannelInfo{
		ServiceID:       ServiceYouTube,
		URL:             "https://www.youtube.com/channel/UC1",
		Name:            "Channel",
		AvatarURL:       Ptr("avatar"),
		Description:     Ptr("about"),
		SubscriberCount: Ptr(int64(1000)),
	}
}

func TestSubscriptionSetData(t *testing.T) {
	s := NewSubscription(channelInfo())
	s.UID = 3
	s.NotificationMode = NotificationModeEnabled

	s.SetData(Ptr("name2"), Ptr("avatar2"), Ptr("desc2"), nil)

	assert.Equal(t, "name2", *s.Name)
	assert.Equal(t, "avatar2", *s.AvatarURL)
	assert.Equal(t, "desc2", *s.Description)
	assert.Nil(t, s.SubscriberCount)
	assert.Equal(t, int64(3), s.UID)
	assert.Equal(t, ServiceYouTube, s.ServiceID)
	assert.Equal(t, "https://www.youtube.com/channel/UC1", *s.URL)
	assert.Equal(t, NotificationModeEnabled, s.NotificationMode)
}

func TestSubscriptionToChannelInfoItem(t *testing.T) {
	s := NewSubscription(channelInfo())
	item := s.ToChannelInfoItem()
	assert.Equal(t, "Channel", item.Name)
	assert.Equal(t, int64(1000), item.SubscriberCount)
	assert.Equal(t, s.AvatarURL, item.ThumbnailURL)

	s.SubscriberCount = nil
	assert.Zero(t, s.ToChannelInfoItem().SubscriberCount)
}

func TestEqualPtr(t *testing.T) {
	assert.True(t, EqualPtr[string](nil, nil))
	assert.False(t, EqualPtr(nil, Ptr("a")))
	assert.False(t, EqualPtr(Ptr(""), nil))
	assert.True(t, EqualPtr(Ptr("a"), Ptr("a")))
}
