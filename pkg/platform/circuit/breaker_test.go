package circuit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var errRemote = errors.New("502 from verifier")

type BreakerSuite struct {
	suite.Suite
	now     time.Time
	breaker *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.breaker = New("verifier",
		WithFailureThreshold(2),
		WithSuccessThreshold(2),
		WithCooldown(time.Second),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *BreakerSuite) trip() {
	s.breaker.Record(errRemote)
	s.Require().True(s.breaker.Record(errRemote).Changed())
}

func (s *BreakerSuite) TestOpensAfterConsecutiveFailures() {
	s.False(s.breaker.Record(errRemote).Changed())
	s.NoError(s.breaker.Allow())

	t := s.breaker.Record(errRemote)
	s.Equal(Transition{From: StateClosed, To: StateOpen}, t)
	s.ErrorIs(s.breaker.Allow(), ErrOpen)
}

func (s *BreakerSuite) TestSuccessResetsFailureCount() {
	s.breaker.Record(errRemote)
	s.breaker.Record(nil)
	s.breaker.Record(errRemote)

	s.Equal(StateClosed, s.breaker.State())
}

func (s *BreakerSuite) TestSingleProbeAfterCooldown() {
	s.trip()

	s.now = s.now.Add(500 * time.Millisecond)
	s.ErrorIs(s.breaker.Allow(), ErrOpen)

	s.now = s.now.Add(600 * time.Millisecond)
	s.NoError(s.breaker.Allow(), "first probe after cooldown")
	s.Equal(StateHalfOpen, s.breaker.State())
	s.ErrorIs(s.breaker.Allow(), ErrOpen, "probe still in flight")
}

func (s *BreakerSuite) TestClosesAfterSuccessfulProbes() {
	s.trip()
	s.now = s.now.Add(2 * time.Second)

	s.Require().NoError(s.breaker.Allow())
	s.False(s.breaker.Record(nil).Changed())

	s.Require().NoError(s.breaker.Allow())
	s.Equal(Transition{From: StateHalfOpen, To: StateClosed}, s.breaker.Record(nil))
	s.Equal("closed", s.breaker.State().String())
}

func (s *BreakerSuite) TestFailedProbeReopens() {
	s.trip()
	s.now = s.now.Add(2 * time.Second)

	s.Require().NoError(s.breaker.Allow())
	s.Equal(Transition{From: StateHalfOpen, To: StateOpen}, s.breaker.Record(errRemote))
	s.ErrorIs(s.breaker.Allow(), ErrOpen, "cooldown restarts")
}

func (s *BreakerSuite) TestConcurrentProbesAdmitOne() {
	s.trip()
	s.now = s.now.Add(2 * time.Second)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			if s.breaker.Allow() == nil {
				admitted.Add(1)
			}
		})
	}
	wg.Wait()
	s.Equal(int32(1), admitted.Load())
}
