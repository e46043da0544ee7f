package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(nil)

	require.NoError(t, pub.PublishEvent(context.Background(), NewLevelUpEvent("s1", 1, 2, 105)))
	require.NoError(t, pub.PublishEvent(context.Background(), NewAchievementUnlockedEvent("s1", []string{"first_module"}, time.Now())))

	got := pub.GetPublishedEvents()
	require.Len(t, got, 2)
	assert.Equal(t, EventLevelUp, got[0].Type)
	assert.Equal(t, EventAchievementUnlocked, got[1].Type)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
	assert.NoError(t, pub.Close())
}

func TestNewEvent_Envelope(t *testing.T) {
	a := NewLevelUpEvent("s1", 4, 5, 410)
	b := NewLevelUpEvent("s1", 4, 5, 410)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "tutor-service", a.Source)
	assert.Equal(t, "1.0", a.Version)
	assert.Equal(t, "s1", a.StudentID)
	assert.Equal(t, LevelUpEvent{OldLevel: 4, NewLevel: 5, XP: 410}, a.Data)
}

func TestToMessage(t *testing.T) {
	high := models.RiskHigh
	student := models.StudentMetrics{ID: "s9", Name: "Grace", TeacherID: "t1", RiskLevel: &high}
	prediction := models.RiskPrediction{RiskLevel: models.RiskHigh, Confidence: 85}
	event := NewStudentAtRiskEvent(student, prediction)

	msg, err := toMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "student.at_risk", msg.Metadata.Get("event_type"))
	assert.Equal(t, "s9", msg.Metadata.Get("student_id"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "Grace", data["student_name"])
	assert.Equal(t, "High", data["risk_level"])
}

type capturePublisher struct {
	topic    string
	messages []*message.Message
}

func (c *capturePublisher) Publish(topic string, messages ...*message.Message) error {
	c.topic = topic
	c.messages = append(c.messages, messages...)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func TestKafkaEventPublisher_PublishesToTopic(t *testing.T) {
	capture := &capturePublisher{}
	pub := newWatermillPublisher(capture, "tutor.progress", NewMockEventPublisher(nil).Logger)

	err := pub.PublishEvent(context.Background(), NewProgressResetEvent("s1", "admin-1"))

	require.NoError(t, err)
	assert.Equal(t, "tutor.progress", capture.topic)
	require.Len(t, capture.messages, 1)
	assert.Equal(t, "progress.reset", capture.messages[0].Metadata.Get("event_type"))
}
