package integrity

import (
	"fmt"

	"github.com/digimosa/exif-inspector/internal/metadata"
	"github.com/digimosa/exif-inspector/internal/models"
)

// Checker runs a fixed set of rules and scores their findings.
type Checker struct {
	rules  []Rule
	scorer Scorer
	allow  Allowlist
}

// Option configures a Checker.
type Option func(*Checker)

// WithScorer replaces the default weights.
func WithScorer(s Scorer) Option {
	return func(c *Checker) { c.scorer = s }
}

// WithAllowlist makes the software rule ignore trusted software strings.
func WithAllowlist(a Allowlist) Option {
	return func(c *Checker) { c.allow = a }
}

// WithRules replaces the default rule set.
func WithRules(rules ...Rule) Option {
	return func(c *Checker) { c.rules = rules }
}

// NewChecker returns a checker running the five standard rules.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{scorer: DefaultScorer}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules == nil {
		c.rules = []Rule{
			SoftwareRule{Allow: c.allow},
			TimestampRule{},
			DeviceRule{},
			MissingFieldsRule{},
			SuspiciousValueRule{},
		}
	}
	return c
}

// Check evaluates vs. It never fails: a rule that errors or panics is
// reported as a warning and the remaining rules still run.
func (c *Checker) Check(vs metadata.Views) models.IntegrityResult {
	res := models.IntegrityResult{
		Indicators: []string{},
		Warnings:   []string{},
	}

	for _, r := range c.rules {
		out := runRule(r, vs)
		for _, f := range out.Findings {
			switch f.Kind {
			case models.KindIndicator:
				res.Indicators = append(res.Indicators, f.Message)
			default:
				res.Warnings = append(res.Warnings, f.Message)
			}
		}
		mergeDetails(&res.Details, out.Details)
		if out.Err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s check failed: %v", r.Name(), out.Err))
		}
	}

	res.Confidence, res.IsModified = c.scorer.Score(len(res.Indicators), len(res.Warnings))
	return res
}

var defaultChecker = NewChecker()

// Check runs the standard rules over a flat and a namespaced view.
func Check(flat metadata.FlatView, ns metadata.NamespacedView) models.IntegrityResult {
	return defaultChecker.Check(metadata.Views{Flat: flat, Namespaced: ns})
}
