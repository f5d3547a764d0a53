package matcher

import (
	"fmt"
	"runtime"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

// Distance thresholds in meters.
const (
	// ExactBandMeters is the band treated as the same location.
	ExactBandMeters = 50.0
	// NearBandMeters is the band treated as very likely the same location.
	NearBandMeters = 200.0
	// DefaultThresholdMeters is the default outer matching threshold.
	DefaultThresholdMeters = 200.0
	// MaxThresholdMeters caps how far the outer threshold can be raised.
	// Matches beyond the near band are flagged for review, and past this
	// ceiling proximity alone is no longer meaningful.
	MaxThresholdMeters = 500.0
)

// Confidence scores per distance band.
const (
	ConfidenceExact  = 1.0
	ConfidenceNear   = 0.8
	ConfidenceReview = 0.6
)

type options struct {
	thresholdMeters float64
	concurrency     int
}

// Option configures a matching run.
type Option func(*options) error

func defaultOptions() options {
	return options{
		thresholdMeters: DefaultThresholdMeters,
		concurrency:     runtime.GOMAXPROCS(0),
	}
}

// WithThresholdMeters sets the outer distance threshold. Values above the
// near band produce review-flagged matches; the ceiling is 500 meters.
func WithThresholdMeters(meters float64) Option {
	return func(o *options) error {
		if meters <= 0 || meters > MaxThresholdMeters {
			return errors.NewValidationError("threshold_meters", meters,
				fmt.Sprintf("must be in (0, %.0f]", MaxThresholdMeters))
		}
		o.thresholdMeters = meters
		return nil
	}
}

// WithConcurrency bounds the number of goroutines used for candidate
// scoring. Resolution itself is always sequential, so results do not
// depend on this setting.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("concurrency", n, "must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}
