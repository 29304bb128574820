// Command turnsim plays a headless match between scripted players and journals every
// resolved command.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/stratagem/internal/config"
	"github.com/talgya/stratagem/internal/engine"
	"github.com/talgya/stratagem/internal/entropy"
	"github.com/talgya/stratagem/internal/journal"
	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

func main() {
	cfg, err := config.LoadSim()
	if err != nil {
		config.Exitf("turnsim: %v", err)
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, cfg, logger); err != nil {
		if engine.IsFatal(err) {
			config.Exitf("turnsim: configuration error: %v", err)
		}
		config.Exitf("turnsim: %v", err)
	}
}

// newLogger writes text to terminals and JSON everywhere else.
func newLogger(f *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(f, opts))
	}
	return slog.New(slog.NewJSONHandler(f, opts))
}

func loadProfiles(path string) (*profile.Set, error) {
	if path == "" {
		return profile.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	return profile.Load(f)
}

// match carries one run's moving parts.
type match struct {
	eng      *engine.Engine
	st       *engine.State
	journal  *journal.DB
	players  []engine.PlayerID
	pending  []journal.Entry
	disaster []string
	logger   *slog.Logger
}

// apply reduces one command. Rejections are logged and skipped; anything else stops
// the run.
func (m *match) apply(cmd engine.Command) error {
	next, err := m.eng.Reduce(m.st, cmd)
	switch {
	case err == nil:
	case engine.IsRejected(err):
		m.logger.Warn("command rejected", "command", cmd.Name(), "code", engine.RejectionCode(err), "error", err)
		return nil
	default:
		return err
	}
	if next == m.st {
		return nil
	}
	m.st = next
	if m.journal != nil {
		m.pending = append(m.pending, journal.FromState(cmd, next))
	}
	return nil
}

func run(ctx context.Context, cfg config.Sim, logger *slog.Logger) (*engine.State, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}

	profiles, err := loadProfiles(cfg.Profiles)
	if err != nil {
		return nil, err
	}

	layout := world.Build(cfg.GenConfig(seed))
	for t, c := range world.TerrainCounts(layout.Map) {
		logger.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}
	logger.Info("world generated",
		"seed", seed,
		"cells", humanize.Comma(int64(layout.Map.CellCount())),
		"enclaves", len(layout.Enclaves),
		"domains", len(layout.Domains),
		"routes", len(layout.Links),
	)

	players := make([]engine.PlayerID, len(cfg.Players))
	for i, p := range cfg.Players {
		players[i] = engine.PlayerID(p)
	}
	st, err := engine.NewGame(layout, players, profiles, engine.SetupConfig{
		Seed:          seed,
		StartForces:   cfg.StartForces,
		NeutralForces: cfg.NeutralForces,
	})
	if err != nil {
		return nil, err
	}

	m := &match{
		eng:     engine.New(profiles, engine.DefaultRules(), logger),
		st:      st,
		players: players,
		logger:  logger,
	}
	for key := range profiles.Disasters {
		m.disaster = append(m.disaster, key)
	}
	sort.Strings(m.disaster)

	if cfg.Journal != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal), 0o755); err != nil {
			return nil, fmt.Errorf("journal dir: %w", err)
		}
		db, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		m.journal = db
		if err := db.SaveMeta(ctx, "seed", fmt.Sprint(seed)); err != nil {
			return nil, fmt.Errorf("save meta: %w", err)
		}
		if err := db.SaveMeta(ctx, "players", strings.Join(cfg.Players, ",")); err != nil {
			return nil, fmt.Errorf("save meta: %w", err)
		}
	}

	var unacked []string
	for i := 0; i < cfg.Turns; i++ {
		if err := ctx.Err(); err != nil {
			logger.Info("stopping early", "turn", m.st.Turn, "reason", err)
			break
		}
		if err := m.playTurn(cfg, unacked); err != nil {
			return m.st, fmt.Errorf("turn %d: %w", m.st.Turn, err)
		}
		// The renderer acknowledges a turn's effects one turn later.
		unacked = unacked[:0]
		for _, it := range m.st.Effects {
			unacked = append(unacked, it.ID)
		}
		if err := m.flush(ctx); err != nil {
			return m.st, err
		}
		if winner, ok := soleOwner(m.st); ok {
			logger.Info("match decided", "turn", m.st.Turn, "winner", winner)
			break
		}
	}

	report(logger, m.st, players)
	return m.st, nil
}

func (m *match) playTurn(cfg config.Sim, unacked []string) error {
	if len(unacked) > 0 {
		if err := m.apply(engine.AckEffects{IDs: append([]string(nil), unacked...)}); err != nil {
			return err
		}
	}

	turn := m.st.Turn
	if cfg.DisasterEvery > 0 && turn > 0 && turn%cfg.DisasterEvery == 0 && len(m.disaster) > 0 {
		key := m.disaster[(turn/cfg.DisasterEvery-1)%len(m.disaster)]
		if err := m.apply(engine.TriggerDisaster{Profile: key}); err != nil {
			return err
		}
		if n := m.st.Notice; n != nil && n.Turn == turn {
			m.logger.Info("notice", "title", n.Title, "body", n.Body)
			if err := m.apply(engine.ClearNotice{}); err != nil {
				return err
			}
		}
	}

	for i, p := range m.players {
		// Locked gambits open up once the opening is over.
		if turn == 10 {
			for _, key := range lockedGambits(m.st, p) {
				if err := m.apply(engine.UnlockGambit{Player: p, Key: key}); err != nil {
					return err
				}
			}
		}
		if (turn+i)%4 == 3 {
			if key, ok := pickGambit(m.st, p); ok {
				if err := m.apply(engine.ActivateGambit{Player: p, Key: key}); err != nil {
					return err
				}
			}
		}
		if orders := planOrders(m.st, p, m.eng.Rules); len(orders) > 0 {
			if err := m.apply(engine.SubmitOrders{Player: p, Orders: orders}); err != nil {
				return err
			}
		}
	}

	if err := m.apply(engine.AdvanceTurn{}); err != nil {
		return err
	}
	summarize(m.logger, m.st)
	return nil
}

func (m *match) flush(ctx context.Context) error {
	if m.journal == nil || len(m.pending) == 0 {
		return nil
	}
	if err := m.journal.Record(ctx, m.pending...); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("journal: %w", err)
	}
	m.pending = m.pending[:0]
	return nil
}

func summarize(logger *slog.Logger, st *engine.State) {
	conquests, downgraded := 0, 0
	for _, r := range st.LastTurn {
		if r.Conquest != nil {
			conquests++
		}
		if r.Downgraded() {
			downgraded++
		}
	}
	logger.Info("turn complete",
		"turn", st.Turn-1,
		"conquests", conquests,
		"downgraded", downgraded,
		"events", len(st.Events),
		"effects_queued", len(st.Effects),
		"domains_held", len(st.DomainOwners),
	)
}

// soleOwner reports a player holding every non-neutral enclave.
func soleOwner(st *engine.State) (engine.PlayerID, bool) {
	var owner engine.PlayerID
	for _, e := range st.Enclaves {
		if e.Owner == engine.Neutral {
			continue
		}
		if owner != engine.Neutral && e.Owner != owner {
			return engine.Neutral, false
		}
		owner = e.Owner
	}
	return owner, owner != engine.Neutral
}

type standing struct {
	player   engine.PlayerID
	enclaves int
	forces   int
	domains  int
}

func standings(st *engine.State, players []engine.PlayerID) []standing {
	idx := make(map[engine.PlayerID]*standing, len(players))
	out := make([]standing, len(players))
	for i, p := range players {
		out[i].player = p
		idx[p] = &out[i]
	}
	for _, e := range st.Enclaves {
		if s := idx[e.Owner]; s != nil {
			s.enclaves++
			s.forces += e.Forces
		}
	}
	for _, p := range st.DomainOwners {
		if s := idx[p]; s != nil {
			s.domains++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].domains != out[j].domains {
			return out[i].domains > out[j].domains
		}
		if out[i].enclaves != out[j].enclaves {
			return out[i].enclaves > out[j].enclaves
		}
		return out[i].forces > out[j].forces
	})
	return out
}

func report(logger *slog.Logger, st *engine.State, players []engine.PlayerID) {
	for i, s := range standings(st, players) {
		logger.Info("standing",
			"place", humanize.Ordinal(i+1),
			"player", s.player,
			"domains", s.domains,
			"enclaves", s.enclaves,
			"forces", humanize.Comma(int64(s.forces)),
		)
	}
	logger.Info("match over", "turns", st.Turn, "events_active", len(st.Events))
}
