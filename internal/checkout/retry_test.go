package checkout

import (
	"testing"

	ierr "github.com/freegames/claimer/internal/errors"
	"github.com/freegames/claimer/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type RetryPolicySuite struct {
	testutil.BaseTestSuite
	policy *RetryPolicy
}

func TestRetryPolicy(t *testing.T) {
	suite.Run(t, new(RetryPolicySuite))
}

func (s *RetryPolicySuite) SetupTest() {
	s.BaseTestSuite.SetupTest()
	s.policy = NewRetryPolicy(s.GetConfig(), s.GetLogger())
}

func (s *RetryPolicySuite) TestTimeoutRetriedOnce() {
	attempts := 0
	err := s.policy.Execute(s.GetContext(), func() error {
		attempts++
		if attempts == 1 {
			return ierr.NewError("first attempt stalled").Mark(ierr.ErrTimeout)
		}
		return nil
	})

	s.NoError(err)
	s.Equal(2, attempts)
}

func (s *RetryPolicySuite) TestNonTimeoutNotRetried() {
	attempts := 0
	err := s.policy.Execute(s.GetContext(), func() error {
		attempts++
		return ierr.NewError("broken page").Mark(ierr.ErrValidation)
	})

	s.Error(err)
	s.Equal(1, attempts)
	s.True(ierr.IsValidation(err))
	s.False(ierr.IsTimeout(err))
}

func (s *RetryPolicySuite) TestExhaustionReturnsFinalTimeout() {
	attempts := 0
	err := s.policy.Execute(s.GetContext(), func() error {
		attempts++
		return ierr.NewError("still stalled").Mark(ierr.ErrTimeout)
	})

	s.Error(err)
	s.Equal(s.GetConfig().Checkout.BatchAttempts, attempts)
	s.True(ierr.IsTimeout(err))
}
