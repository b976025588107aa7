package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/config"
	"github.com/Veraticus/bookkeeper/internal/consumption"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/presenter"
	"github.com/Veraticus/bookkeeper/internal/storage"
	"github.com/spf13/viper"
)

// session is an open database with a presenter publishing to one view.
type session struct {
	db        *storage.DB
	presenter *presenter.Presenter
	cfg       config.Config
	seeded    bool
}

// openSession loads the configuration, opens the database, creates missing
// tables and seeds defaults on first run.
func openSession(ctx context.Context, v *viper.Viper, view presenter.View) (*session, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	s, err := newSession(ctx, db, cfg, view)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newSession(ctx context.Context, db *storage.DB, cfg config.Config, view presenter.View) (*session, error) {
	categories, err := storage.NewRepository(ctx, db, model.CategorySchema)
	if err != nil {
		return nil, err
	}
	expenses, err := storage.NewRepository(ctx, db, model.ExpenseSchema)
	if err != nil {
		return nil, err
	}
	budgets, err := storage.NewRepository(ctx, db, model.BudgetSchema)
	if err != nil {
		return nil, err
	}

	p, err := presenter.New(presenter.Deps{
		Categories: categories,
		Expenses:   expenses,
		Budgets:    budgets,
		Engine:     consumption.NewEngine(cfg.Windows),
		View:       view,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	seeded, err := p.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("opened database", "path", db.Path(), "seeded", seeded)
	return &session{db: db, presenter: p, cfg: cfg, seeded: seeded}, nil
}

// Close closes the database.
func (s *session) Close() error {
	return s.db.Close()
}

// parsePK parses a primary key argument.
func parsePK(arg string) (int64, error) {
	pk, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || pk <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid id %q: must be a positive number", arg), common.ErrValidationFailed)
	}
	return pk, nil
}

// parseAmount parses a whole-unit amount argument.
func parseAmount(arg string) (int64, error) {
	amount, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid amount %q: must be a whole number", arg), common.ErrValidationFailed)
	}
	return amount, nil
}

// resolveCategory finds a category by id or name among the published list.
func resolveCategory(categories []model.Category, ref string) (*int64, error) {
	if ref == "" {
		return nil, nil
	}
	if pk, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range categories {
			if c.PK == pk {
				return model.Ref(pk), nil
			}
		}
	}
	for _, c := range categories {
		if c.Name == ref {
			return model.Ref(c.PK), nil
		}
	}
	return nil, common.NewUserError(fmt.Sprintf("no category named %q", ref), common.ErrNotFound)
}
