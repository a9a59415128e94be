package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

func detectedSession(id string) *models.Session {
	sess := models.NewSession(id)
	now := time.Now().UTC()
	sess.Detection = models.DetectionState{
		Detected:   true,
		Tier:       models.TierKeyword,
		Confidence: 0.45,
		DetectedAt: &now,
	}
	sess.ScamType = models.ScamTypeUPIFraud
	return sess
}

func TestEventBusPublishReachesSubscriber(t *testing.T) {
	eb := NewEventBus(nil, logger.NewDevelopment())
	defer eb.Close()

	ch, unsubscribe := eb.Subscribe(context.Background(), nil)
	defer unsubscribe()

	event := NewSessionEvent(EventTypeScamDetected, detectedSession("s-ev-1"), 2)
	require.NoError(t, eb.Publish(context.Background(), event))

	select {
	case got := <-ch:
		assert.Equal(t, EventTypeScamDetected, got.Type)
		assert.Equal(t, "s-ev-1", got.SessionID)
		assert.True(t, got.Detected)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestEventBusFiltersLocalSubscribers(t *testing.T) {
	eb := NewEventBus(nil, logger.NewDevelopment())
	defer eb.Close()

	ch, unsubscribe := eb.Subscribe(context.Background(), &Subscription{DetectedOnly: true})
	defer unsubscribe()

	benign := NewSessionEvent(EventTypeSessionStarted, models.NewSession("s-ev-4"), 1)
	detected := NewSessionEvent(EventTypeScamDetected, detectedSession("s-ev-5"), 2)
	require.NoError(t, eb.Publish(context.Background(), benign))
	require.NoError(t, eb.Publish(context.Background(), detected))

	// Only the detected event passes the filter; the benign one was
	// never queued, so the first receive is the detection.
	select {
	case got := <-ch:
		assert.Equal(t, EventTypeScamDetected, got.Type)
		assert.Equal(t, "s-ev-5", got.SessionID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	select {
	case got := <-ch:
		t.Fatalf("unexpected extra event: %s", got.Type)
	default:
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := NewEventBus(nil, logger.NewDevelopment())
	defer eb.Close()

	_, unsubscribe := eb.Subscribe(context.Background(), nil)
	assert.Equal(t, 1, eb.SubscriberCount())

	unsubscribe()
	assert.Zero(t, eb.SubscriberCount())
}

func TestSubscriptionMatches(t *testing.T) {
	detected := NewSessionEvent(EventTypeScamDetected, detectedSession("s-ev-2"), 1)
	benign := NewSessionEvent(EventTypeSessionStarted, models.NewSession("s-ev-3"), 1)

	all := &Subscription{}
	assert.True(t, all.Matches(detected))
	assert.True(t, all.Matches(benign))

	bySession := &Subscription{SessionIDs: []string{"s-ev-2"}}
	assert.True(t, bySession.Matches(detected))
	assert.False(t, bySession.Matches(benign))

	byType := &Subscription{Types: []EventType{EventTypeSessionClosed}}
	assert.False(t, byType.Matches(detected))

	detectedOnly := &Subscription{DetectedOnly: true}
	assert.True(t, detectedOnly.Matches(detected))
	assert.False(t, detectedOnly.Matches(benign))
}
