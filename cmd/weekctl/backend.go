package main

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/remote"
	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/reconciler"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

// weekBackend is the week surface shared by WeekService and the HTTP client.
type weekBackend interface {
	ListWeeks(ctx context.Context) ([]*domain.Week, error)
	CreateWeek(ctx context.Context, input services.CreateWeekInput) (*domain.Week, error)
	FetchWeekWithDays(ctx context.Context, id string) (*domain.WeekTree, error)
	DeleteWeek(ctx context.Context, id string) error
	FetchDayWithHabits(ctx context.Context, id string) (*domain.DayTree, error)
	SetDayCompletion(ctx context.Context, id string, completed bool) error
}

var (
	_ weekBackend = (*services.WeekService)(nil)
	_ weekBackend = (*remote.Client)(nil)
)

type session struct {
	weeks  weekBackend
	habits reconciler.Gateway
	close  func() error
}

func openSession(ctx context.Context, opts *options) (*session, error) {
	if opts.server != "" {
		timeout, err := time.ParseDuration(opts.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", opts.timeout, err)
		}
		client := remote.NewClient(opts.server, timeout)
		return &session{weeks: client, habits: client, close: func() error { return nil }}, nil
	}

	store, err := repository.OpenSQLStore(ctx, "sqlite", repository.SQLiteDSN(opts.dbPath))
	if err != nil {
		return nil, err
	}
	return &session{
		weeks:  services.NewWeekService(store, nil),
		habits: store,
		close:  store.Close,
	}, nil
}

// withSession opens the backend for one command and closes it afterwards.
func withSession(ctx context.Context, opts *options, fn func(*session) error) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}
