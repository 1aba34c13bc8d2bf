package match

import (
	"log/slog"

	"github.com/mutronic/marcaroni/internal/logging"
)

// Engine dispatches records through an ordered rule list.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	exceptions []Exception
	ties       TiePolicy
	rules      []Rule
	logger     *slog.Logger
}

// WithExceptions installs carve-outs for the first rule.
func WithExceptions(exceptions ...Exception) Option {
	return func(o *engineOptions) { o.exceptions = append(o.exceptions, exceptions...) }
}

// WithTiePolicy selects how equal-rank single matches are handled.
func WithTiePolicy(policy TiePolicy) Option {
	return func(o *engineOptions) { o.ties = policy }
}

// WithRules replaces the default decision list.
func WithRules(rules ...Rule) Option {
	return func(o *engineOptions) { o.rules = rules }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// NewEngine builds an Engine with the default rules unless WithRules is
// given.
func NewEngine(opts ...Option) *Engine {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	rules := o.rules
	if rules == nil {
		rules = DefaultRules(o.exceptions, o.ties)
	}
	return &Engine{
		rules:  rules,
		logger: logging.NewComponentLogger(o.logger, "match"),
	}
}

// RuleNames returns the rule names in evaluation order.
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Decide returns the decision for in without touching a sink.
func (e *Engine) Decide(in *Input) Decision {
	if len(in.Candidates) == 0 {
		return Decision{Disposition: Add, Rule: "no_candidates", Reason: "no matches"}
	}
	for _, rule := range e.rules {
		if d, ok := rule.Decide(in); ok {
			d.Rule = rule.Name()
			return d
		}
	}
	return Decision{Disposition: Ambiguous, Rule: "fallback", Reason: ReasonNoRule}
}

// Dispose reports side channels, decides, and applies the decision to sink
// with exactly one disposition call.
func (e *Engine) Dispose(in *Input, sink Sink) (Decision, error) {
	if len(in.Candidates) > 0 {
		if err := e.reportSideChannels(in, sink); err != nil {
			return Decision{}, err
		}
	}
	d := e.Decide(in)
	attrs := append(logging.DecisionAttrs(string(d.Disposition), d.Rule, d.Reason),
		logging.Int("candidates", len(in.Candidates)),
	)
	if in.Item != nil {
		attrs = append(attrs, logging.Record(in.Item.Position))
	}
	if d.Ref.EntryID != "" {
		attrs = append(attrs, logging.String(logging.FieldEntryID, d.Ref.EntryID))
	}
	e.logger.Debug("record disposed", logging.Args(attrs...)...)
	return d, d.Apply(sink, in.Item)
}

func (e *Engine) reportSideChannels(in *Input, sink Sink) error {
	title := in.title()
	if !in.InputIsWeakest() {
		for _, c := range in.Candidates {
			if c.Vector.MatchIsWeakestTier && !c.Vector.MatchIsSamePlatform {
				if err := sink.ReportRedundantMatch(c.Source.Platform, title, c.Ref); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if in.AnyBetter() {
		var ids []string
		if in.Item != nil {
			ids = in.Item.Identifiers
		}
		return sink.ReportRedundantIncoming(in.Source.Platform, title, ids)
	}
	return nil
}
