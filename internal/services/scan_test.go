package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"couple-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScores map[string]int

func (s stubScores) ComputeScore(ctx context.Context, coupleID string) (int, error) {
	switch coupleID {
	case "broken":
		return 0, errBoom
	case "panics":
		panic("nil map")
	}
	score, ok := s[coupleID]
	if !ok {
		return 100, nil
	}
	return score, nil
}

func TestHealthScanJob_Run(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	now := time.Now()

	for _, uid := range []string{"a1", "b1", "a2", "b2", "a3"} {
		e.createUser(t, &models.User{ID: uid, FCMToken: "tok-" + uid})
	}
	e.createCouple(t, "at-threshold", "a1", "b1")
	e.createCouple(t, "below", "a2", "b2")
	e.createCouple(t, "half", "a3", "")

	require.NoError(t, e.activities.Create(ctx, "at-threshold", &models.Activity{ID: "x", CreatedAt: now.Add(-time.Hour), Points: 30}))
	require.NoError(t, e.activities.Create(ctx, "below", &models.Activity{ID: "x", CreatedAt: now.Add(-time.Hour), Points: 29.25}))

	sender := &fakeSender{}
	job := NewHealthScanJob(e.couples, NewScoreService(e.activities), NewNotificationService(e.users, sender))

	report := job.Run(ctx)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Notified)
	assert.Equal(t, 0, report.Failed)

	require.Len(t, sender.sent, 2)
	assert.ElementsMatch(t, []string{"tok-a2", "tok-b2"}, []string{sender.sent[0].Token, sender.sent[1].Token})
	assert.Contains(t, sender.sent[0].Notification.Body, "39%")
}

func TestHealthScanJob_IsolatesFailures(t *testing.T) {
	e := newEnv()
	e.createUser(t, &models.User{ID: "a", FCMToken: "tok-a"})
	e.createCouple(t, "broken", "x", "y")
	e.createCouple(t, "low", "a", "ghost")
	e.createCouple(t, "panics", "x", "y")

	sender := &fakeSender{}
	job := NewHealthScanJob(e.couples, stubScores{"low": 10}, NewNotificationService(e.users, sender))

	report := job.Run(context.Background())
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, report.Notified)
	assert.Len(t, sender.sent, 1)
}

func TestHealthScanJob_Pages(t *testing.T) {
	e := newEnv()
	for i := 0; i < 2*scanPageSize+17; i++ {
		e.createCouple(t, fmt.Sprintf("c%04d", i), "x", "y")
	}

	job := NewHealthScanJob(e.couples, stubScores{}, NewNotificationService(e.users, &fakeSender{}))
	report := job.Run(context.Background())
	assert.Equal(t, 2*scanPageSize+17, report.Scanned)
	assert.Equal(t, 0, report.Failed)
}

func TestHealthScanJob_Cancelled(t *testing.T) {
	e := newEnv()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewHealthScanJob(e.couples, stubScores{}, NewNotificationService(e.users, &fakeSender{})).Run(cancelled)
	assert.Equal(t, 0, report.Scanned)
}

type recordingNotifier struct {
	failFor map[string]bool
	calls   []string
}

func (n *recordingNotifier) NotifyLowScore(ctx context.Context, uid string, score int) (bool, error) {
	n.calls = append(n.calls, uid)
	if n.failFor[uid] {
		return false, errBoom
	}
	return true, nil
}

func TestHealthScanJob_NotifiesPartnerWhenFirstMemberFails(t *testing.T) {
	e := newEnv()
	e.createCouple(t, "c1", "a", "b")

	notifier := &recordingNotifier{failFor: map[string]bool{"a": true}}
	report := NewHealthScanJob(e.couples, stubScores{"c1": 10}, notifier).Run(context.Background())

	assert.Equal(t, []string{"a", "b"}, notifier.calls)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, 1, report.Failed)
}
