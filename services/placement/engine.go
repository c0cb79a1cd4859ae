package placement

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"placementd/pkg/bus"
	"placementd/pkg/render"
)

// Event subjects published after each committed operation.
const (
	applicationCreatedTopic   = "placement.applications.created"
	applicationDecidedTopic   = "placement.applications.decided"
	applicationWithdrawnTopic = "placement.applications.withdrawn"
	interviewScheduledTopic   = "placement.interviews.scheduled"
	invitationCreatedTopic    = "placement.invitations.created"
	invitationDecidedTopic    = "placement.invitations.decided"
)

// inviteHeadroom is the additive cap on the invitation path: a job may hold
// pending invitations up to its quota plus this margin, independently of the
// hard application quota.
const inviteHeadroom = 10

// Store holds external dependencies required by the engine.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *bus.Bus
}

// Config controls runtime behaviour of the engine.
type Config struct {
	Window Window
	Logger *log.Logger
}

// Engine owns the application lifecycle, the interview calendar, and the
// token ledger. All public operations are short all-or-nothing transactions.
type Engine struct {
	store  *Store
	render *render.Engine
	window Window
	locks  *keyedLocks
	logger *log.Logger
}

// New initialises the engine with sane defaults applied to the provided
// configuration.
func New(store *Store, renderer *render.Engine, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}

	if len(cfg.Window.Days) == 0 {
		cfg.Window = DefaultWindow()
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		store:  store,
		render: renderer,
		window: cfg.Window,
		locks:  newKeyedLocks(),
		logger: cfg.Logger,
	}, nil
}

// Window returns the configured placement calendar.
func (e *Engine) Window() Window { return e.window }

func (e *Engine) orm(ctx context.Context) *gorm.DB {
	return e.store.ORM.WithContext(ctx)
}

// lockForUpdate adds a row lock on postgres. Other dialects fall back to the
// engine's keyed mutexes, which every mutating operation already holds.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (e *Engine) publishJSON(ctx context.Context, subject string, payload map[string]any) {
	if e.store.Bus == nil || subject == "" {
		return
	}
	if err := e.store.Bus.Publish(ctx, subject, payload); err != nil {
		e.logger.Printf("WARN: publish %s: %v", subject, err)
	}
}
