package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"predman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectFixture(pred *stubPredictor) (*ProjectService, *fakeProjects, *fakeStats) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	projects := &fakeProjects{infos: map[string]*domain.ProjectInfo{
		"p1": {
			Project:   domain.Project{ID: "p1", Name: "Apollo", OwnerID: "owner"},
			DueDate:   domain.NewDate(created.AddDate(0, 0, 30)),
			CreatedAt: created,
		},
	}}
	members := newFakeMembers([2]string{"p1", "owner"}, [2]string{"p1", "dev"})
	tasks := &fakeTasks{tasks: map[string]domain.Task{}}
	stats := &fakeStats{}
	statsSvc := NewStatisticsService(projects, members, tasks, &fakeDeps{}, stats, pred)
	return NewProjectService(projects, members, statsSvc, nil, newMapCache()), projects, stats
}

func TestInfoStoresPrediction(t *testing.T) {
	pred := &stubPredictor{prediction: domain.Prediction{PredictedDays: 45, CertaintyPercent: 0.6}}
	svc, projects, _ := newProjectFixture(pred)

	info, err := svc.Info(context.Background(), "dev", "p1")
	require.NoError(t, err)

	assert.Equal(t, 30, pred.gotDays)
	assert.Equal(t, "2026-02-15", info.PredictedDeadline.String())
	assert.Equal(t, 0.6, info.CertaintyPercent)
	assert.Equal(t, "2026-02-15", projects.predicted["p1"].String())
}

func TestInfoFallsBackWhenPredictorFails(t *testing.T) {
	pred := &stubPredictor{err: errors.New("connection refused")}
	svc, _, _ := newProjectFixture(pred)

	info, err := svc.Info(context.Background(), "dev", "p1")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", info.PredictedDeadline.String())
	assert.Zero(t, info.CertaintyPercent)
}

func TestUpdateRefreshesStatisticsOnlyForPredictionInputs(t *testing.T) {
	pred := &stubPredictor{}
	svc, _, stats := newProjectFixture(pred)
	ctx := context.Background()

	name := "Artemis"
	info, err := svc.Update(ctx, "dev", "p1", domain.ProjectPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Artemis", info.Name)
	assert.Empty(t, stats.saved)

	hours := 120.0
	_, err = svc.Update(ctx, "dev", "p1", domain.ProjectPatch{AvailableHours: &hours})
	require.NoError(t, err)
	require.Len(t, stats.saved, 1)
	assert.Equal(t, 120.0, stats.saved[0].AvailableHours)
	assert.Equal(t, 2, stats.saved[0].TeamSize)

	empty := ""
	_, err = svc.Update(ctx, "dev", "p1", domain.ProjectPatch{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteRequiresOwner(t *testing.T) {
	svc, projects, _ := newProjectFixture(&stubPredictor{})
	ctx := context.Background()

	err := svc.Delete(ctx, RequestMeta{}, "dev", "p1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, RequestMeta{}, "owner", "p1"))
	assert.NotContains(t, projects.infos, "p1")
}

func TestGetRequiresMembership(t *testing.T) {
	svc, _, _ := newProjectFixture(&stubPredictor{})

	_, err := svc.Get(context.Background(), "stranger", "p1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
