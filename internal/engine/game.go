// Package engine runs the campaign: the executor that is the sole writer of
// theater state, the order submission path through the objection engine,
// and the turn coordinator.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr/vm"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/combat"
	"github.com/talgya/marshals/internal/entropy"
	"github.com/talgya/marshals/internal/negotiation"
	"github.com/talgya/marshals/internal/orders"
	"github.com/talgya/marshals/internal/policy"
	"github.com/talgya/marshals/internal/theater"
	"github.com/talgya/marshals/internal/world"
)

var (
	ErrTurnInProgress    = errors.New("turn already in progress")
	ErrObjectionNotFound = errors.New("objection not found")
	ErrGameOver          = errors.New("game over")
)

// Options tunes a game. Zero fields fall back to DefaultOptions.
type Options struct {
	Seed              int64 // 0 draws a seed from crypto/rand
	PlayerActions     int   // Player orders per turn
	FactionBudget     int   // Autonomous actions per faction per turn
	ActionsPerMarshal int   // Policy invocations per marshal per turn
	SafetyCap         int   // Autonomous actions per turn across all factions
	TurnLimit         int   // 0 means no limit

	// Rand overrides the random source, used to pin rolls in tests.
	Rand entropy.Source `json:"-"`
}

// DefaultOptions returns the standard campaign tuning.
func DefaultOptions() Options {
	return Options{
		PlayerActions:     4,
		FactionBudget:     6,
		ActionsPerMarshal: 2,
		SafetyCap:         100,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PlayerActions <= 0 {
		o.PlayerActions = def.PlayerActions
	}
	if o.FactionBudget <= 0 {
		o.FactionBudget = def.FactionBudget
	}
	if o.ActionsPerMarshal <= 0 {
		o.ActionsPerMarshal = def.ActionsPerMarshal
	}
	if o.SafetyCap <= 0 {
		o.SafetyCap = def.SafetyCap
	}
	return o
}

// Game holds the complete campaign state and wires the systems together.
type Game struct {
	Theater *theater.Theater
	Events  []Event // Recent events, trimmed to maxEvents

	opts Options
	seed int64

	resolver    *combat.Resolver
	policy      *policy.Policy
	authority   *negotiation.AuthorityTracker
	objections  *negotiation.Engine
	vindication *negotiation.Tracker
	book        *orders.Book
	pending     map[string]*negotiation.PendingObjection
	conditions  map[string]*vm.Program // Compiled order conditions by source

	turn          int
	playerActions int
	gameOver      bool
	winner        world.FactionID

	inTurn    bool
	phaseTurn [phaseCount]int // Turn each phase last ran in

	trustBands    map[agents.MarshalID]band
	authorityBand band
}

// New creates a game over a populated theater. The game starts at turn 1
// with the player's full action budget.
func New(th *theater.Theater, opts Options) (*Game, error) {
	opts = opts.withDefaults()

	src := opts.Rand
	seed := opts.Seed
	if src == nil {
		seeded := entropy.NewSeeded(opts.Seed)
		seed = seeded.Seed()
		src = seeded
	}

	res := combat.NewResolver(src)
	pol, err := policy.New(policy.DefaultRules(), res)
	if err != nil {
		return nil, fmt.Errorf("build decision policy: %w", err)
	}
	auth := negotiation.NewAuthorityTracker()

	g := &Game{
		Theater:       th,
		opts:          opts,
		seed:          seed,
		resolver:      res,
		policy:        pol,
		authority:     auth,
		objections:    negotiation.NewEngine(auth, src),
		vindication:   &negotiation.Tracker{},
		book:          orders.NewBook(th, res),
		pending:       make(map[string]*negotiation.PendingObjection),
		conditions:    make(map[string]*vm.Program),
		turn:          1,
		playerActions: opts.PlayerActions,
		trustBands:    make(map[agents.MarshalID]band),
	}
	for _, f := range th.Factions() {
		f.ResetBudget(opts.FactionBudget)
	}
	g.primeBands()

	slog.Info("game created", "seed", seed, "regions", th.Map.Len(),
		"factions", len(th.Factions()), "marshals", len(th.Marshals()))
	return g, nil
}

// Turn returns the current turn number.
func (g *Game) Turn() int { return g.turn }

// Seed returns the seed the game's random source was created with.
func (g *Game) Seed() int64 { return g.seed }

// Options returns the tuning the game runs with.
func (g *Game) Options() Options { return g.opts }

// GameOver reports whether the campaign has ended.
func (g *Game) GameOver() bool { return g.gameOver }

// Winner returns the victorious faction, empty for none or a draw.
func (g *Game) Winner() world.FactionID { return g.winner }

// PlayerActionsLeft returns the player's remaining orders this turn.
func (g *Game) PlayerActionsLeft() int { return g.playerActions }

// Authority returns the order-giver's authority tracker.
func (g *Game) Authority() *negotiation.AuthorityTracker { return g.authority }

// MajorObjectionsThisTurn returns how many major objections were raised this turn.
func (g *Game) MajorObjectionsThisTurn() int { return g.objections.MajorsThisTurn() }

// Vindication returns the live vindication entries.
func (g *Game) Vindication() []negotiation.VindicationEntry {
	return append([]negotiation.VindicationEntry(nil), g.vindication.Entries...)
}

// PendingObjections returns the unresolved objections ordered by marshal,
// then id.
func (g *Game) PendingObjections() []*negotiation.PendingObjection {
	out := make([]*negotiation.PendingObjection, 0, len(g.pending))
	for _, p := range g.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MarshalID != out[j].MarshalID {
			return out[i].MarshalID < out[j].MarshalID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// StandingOrders returns every active standing order.
func (g *Game) StandingOrders() []*orders.StandingOrder {
	return g.book.Orders()
}

// IssueStandingOrder gives a marshal a multi-turn goal. Its first step is
// taken immediately and does not spend the player's budget.
func (g *Game) IssueStandingOrder(spec orders.Spec) (orders.Report, error) {
	if g.gameOver {
		return orders.Report{}, fmt.Errorf("issue standing order: %w", ErrGameOver)
	}
	_, rep, err := g.book.Issue(spec, g.turn, g)
	if err != nil {
		return orders.Report{}, err
	}
	g.applyReports([]orders.Report{rep})
	return rep, nil
}

// RespondStandingOrder answers a pending standing-order interrupt.
func (g *Game) RespondStandingOrder(id agents.MarshalID, r orders.Response) error {
	return g.book.Respond(id, r)
}

// CancelStandingOrder withdraws a marshal's standing order.
func (g *Game) CancelStandingOrder(id agents.MarshalID) (orders.Report, error) {
	rep, err := g.book.Cancel(id, g.turn)
	if err != nil {
		return orders.Report{}, err
	}
	g.applyReports([]orders.Report{rep})
	return rep, nil
}

// applyReports applies standing-order trust penalties and records the
// notable transitions.
func (g *Game) applyReports(reps []orders.Report) {
	for _, rep := range reps {
		m, ok := g.Theater.Marshal(rep.MarshalID)
		if !ok {
			continue
		}
		if rep.TrustPenalty != 0 {
			m.Trust.Modify(rep.TrustPenalty)
		}
		switch {
		case rep.State.Terminal():
			g.record(CategoryStandingOrder, "%s's standing order %s: %s", m.Name, rep.State, rep.Outcome)
		case rep.Event == "blocked" || rep.Event == "contact":
			g.record(CategoryStandingOrder, "%s's standing order raised a %s interrupt", m.Name, rep.Event)
		}
	}
}
