package cascade

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Inferrer assigns each retweeter a single plausible parent by testing
// follow relationships against candidate parents.
type Inferrer struct {
	oracle FollowOracle
}

// InferrerOption configures an Inferrer.
type InferrerOption func(*Inferrer)

// WithPolicy paces every follow check with p.
func WithPolicy(p Policy) InferrerOption {
	return func(inf *Inferrer) { inf.oracle = RateLimited(inf.oracle, p) }
}

// NewInferrer creates an Inferrer. Without WithPolicy the oracle is queried
// back to back; pacing is then the oracle's own business.
func NewInferrer(oracle FollowOracle, opts ...InferrerOption) *Inferrer {
	inf := &Inferrer{oracle: oracle}
	for _, opt := range opts {
		opt(inf)
	}
	return inf
}

// InferEdges runs inference sleeping secondsPerQuery after every follow check.
func InferEdges(ctx context.Context, oracle FollowOracle, rootUserID int64, retweets []Retweeter, secondsPerQuery float64) ([]Edge, error) {
	return NewInferrer(oracle, WithPolicy(SecondsPerQuery(secondsPerQuery))).Infer(ctx, rootUserID, retweets)
}

// record is one retweeter's inference state. Once assigned, parent is final.
type record struct {
	userID    int64
	followers int
	parent    int64
	assigned  bool
}

// inferState is the explicit state threaded through inferStep.
type inferState struct {
	records    []record
	worklist   []int64
	unassigned int
	rounds     int
}

func newInferState(rootUserID int64, retweets []Retweeter) inferState {
	records := make([]record, len(retweets))
	for i, rt := range retweets {
		records[i] = record{userID: rt.UserID, followers: rt.Followers}
	}
	return inferState{
		records:    records,
		worklist:   []int64{rootUserID},
		unassigned: len(records),
	}
}

func (s inferState) done() bool {
	return len(s.worklist) == 0 || s.unassigned == 0
}

// edges returns the assigned records in input order.
func (s inferState) edges() []Edge {
	out := make([]Edge, 0, len(s.records)-s.unassigned)
	for _, r := range s.records {
		if !r.assigned {
			continue
		}
		out = append(out, Edge{UserID: r.userID, Parent: r.parent, Followers: int64(r.followers)})
	}
	return out
}

// Infer returns one edge per retweeter reachable from rootUserID through
// oracle-confirmed follows. Retweeters with no such chain are dropped.
func (inf *Inferrer) Infer(ctx context.Context, rootUserID int64, retweets []Retweeter) ([]Edge, error) {
	ctx, span := tracer.Start(ctx, "cascade.Infer", trace.WithAttributes(
		attribute.Int64("root_user", rootUserID),
		attribute.Int("retweets", len(retweets)),
	))
	defer span.End()

	start := time.Now()
	state := newInferState(rootUserID, retweets)
	for !state.done() {
		next, err := inferStep(ctx, inf.oracle, state)
		if err != nil {
			measureInference(ctx, false, time.Since(start))
			return nil, failSpan(span, fmt.Errorf("infer edges of %d: %w", rootUserID, err))
		}
		state = next
	}
	measureInference(ctx, true, time.Since(start))

	edges := state.edges()
	span.SetAttributes(attribute.Int("edges", len(edges)), attribute.Int("rounds", state.rounds))
	if state.unassigned > 0 {
		slog.Debug("cascade: retweets without follow path discarded", slog.Int64("root_user", rootUserID), slog.Int("discarded", state.unassigned))
	}
	return edges, nil
}

// inferStep pops the last candidate parent, tests every unassigned record
// against it, then orders the candidates ascending by follower count. Only
// retweeters survive the reordering; candidates not yet popped stay queued.
func inferStep(ctx context.Context, oracle FollowOracle, s inferState) (inferState, error) {
	current := s.worklist[len(s.worklist)-1]
	next := inferState{
		records:    slices.Clone(s.records),
		worklist:   slices.Clone(s.worklist[:len(s.worklist)-1]),
		unassigned: s.unassigned,
		rounds:     s.rounds + 1,
	}

	for i := range next.records {
		r := &next.records[i]
		if r.assigned {
			continue
		}
		slog.Debug("cascade: follow check",
			slog.Int64("parent", current),
			slog.Int("candidates_left", len(next.worklist)),
			slog.Int("child", i))
		follows, _, err := oracle.Follows(ctx, r.userID, current)
		followQueries.Add(ctx, 1)
		if err != nil {
			return s, fmt.Errorf("follows(%d, %d): %w", r.userID, current, err)
		}
		if follows {
			r.parent = current
			r.assigned = true
			next.unassigned--
			next.worklist = append(next.worklist, r.userID)
		}
	}

	next.worklist = orderCandidates(next.records, next.worklist)
	return next, nil
}

// orderCandidates keeps the worklist entries that are retweeters, once each,
// sorted ascending by follower count. Ties keep record order.
func orderCandidates(records []record, worklist []int64) []int64 {
	queued := make(map[int64]bool, len(worklist))
	for _, id := range worklist {
		queued[id] = true
	}

	type candidate struct {
		id        int64
		followers int
	}
	var cands []candidate
	for _, r := range records {
		if !queued[r.userID] {
			continue
		}
		delete(queued, r.userID)
		cands = append(cands, candidate{id: r.userID, followers: r.followers})
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return cmp.Compare(a.followers, b.followers) })

	out := make([]int64, len(cands))
	for i, c := range cands {
		out[i] = c.id
	}
	return out
}
