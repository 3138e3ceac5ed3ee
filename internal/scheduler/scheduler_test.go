package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Run() error   { j.runs++; return j.err }
func (j *stubJob) Name() string { return j.name }

func TestRunNow_ExecutesJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := &stubJob{name: "stub"}

	err := s.RunNow(job)

	require.NoError(t, err)
	assert.Equal(t, 1, job.runs)
}

func TestRunNow_PropagatesError(t *testing.T) {
	s := New(zerolog.Nop())
	job := &stubJob{name: "stub", err: errors.New("job broke")}

	err := s.RunNow(job)

	assert.ErrorContains(t, err, "job broke")
}

func TestAddJob_ValidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("0 0 4 * * *", &stubJob{name: "nightly"})

	assert.NoError(t, err)
}

func TestAddJob_RejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &stubJob{name: "broken"})

	assert.Error(t, err)
}
