package retry

import (
	"errors"
	"math/rand"
	"time"

	"github.com/bri1545/SkillChain/pkg/retry/backoff"
)

// Strategy is a function that determines whether or not an action should be
// retried. Strategies are allowed to delay or cause other side effects.
type Strategy func(attempts uint, err error) bool

// StatusCoder is implemented by errors that carry a transport status code,
// such as an HTTP response status.
type StatusCoder interface {
	StatusCode() int
}

// Limit returns a strategy that limits the total number of attempts.
// maxAttempts should be >= 1, since the action is evaluated first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableStatusCodes returns a strategy that only retries errors carrying
// one of retriableCodes. Errors without a status code never reached the peer,
// so they are always retried.
func RetriableStatusCodes(retriableCodes ...int) Strategy {
	return func(_ uint, err error) bool {
		var coder StatusCoder
		if !errors.As(err, &coder) {
			return true
		}

		for _, code := range retriableCodes {
			if coder.StatusCode() == code {
				return true
			}
		}
		return false
	}
}

// Backoff returns a strategy that sleeps for the delay given by strategy,
// capped at maxBackoff, before the next attempt.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay shifted by a random
// fraction in [-jitter, +jitter]. A capped delay of 100ms with a jitter of 0.1
// sleeps somewhere between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}

		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
