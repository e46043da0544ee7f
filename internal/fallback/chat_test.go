package fallback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRespond_KeywordOrder(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"What is a derivative?", derivativeReply},
		{"How do I DIFFERENTIATE x^3?", derivativeReply},
		{"Can you explain the chain rule?", chainRuleReply},
		{"derivative using the chain rule", derivativeReply},
		{"What's an integral?", integralReply},
		{"how to integrate by parts", integralReply},
		{"limits at infinity", limitReply},
		{"integral with a limit", integralReply},
		{"I need help with homework", clarifyReply},
		{"", clarifyReply},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Respond(tt.message, time.Time{}).Text)
		})
	}
}

func TestRespond_UsesGivenTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	reply := Respond("limit", now)

	assert.Equal(t, now, reply.Timestamp)
}
