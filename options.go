// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package plc

import "time"

// plcOptions holds configuration options for Plc construction.
type plcOptions struct {
	logger                     *Logger
	now                        func() time.Time
	maxWorkTimeForNotCycleTask time.Duration
	idleSleep                  time.Duration
}

// Option configures a Plc instance.
type Option interface {
	applyPlc(*plcOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyPlcFunc func(*plcOptions) error
}

func (o *optionImpl) applyPlc(opts *plcOptions) error {
	return o.applyPlcFunc(opts)
}

// WithLogger sets the structured Logger used for tolerated errors, cycle
// timeouts, and lifecycle events. The default is NoopLogger().
func WithLogger(log *Logger) Option {
	return &optionImpl{func(opts *plcOptions) error {
		if log != nil {
			opts.logger = log
		}
		return nil
	}}
}

// WithClock overrides the clock used for cycle-period and deadline checks.
// Intended for deterministic tests; production callers should not set this.
func WithClock(now func() time.Time) Option {
	return &optionImpl{func(opts *plcOptions) error {
		if now != nil {
			opts.now = now
		}
		return nil
	}}
}

// WithMaxWorkTimeForNotCycleTask sets the overrun deadline applied to
// background and edge-triggered tasks, which otherwise have no period of
// their own to measure against. Surfaced from the general configuration
// file's task_setting.max_work_time_for_not_cycle_task field. Zero (the
// default) disables the check for those task kinds.
func WithMaxWorkTimeForNotCycleTask(d time.Duration) Option {
	return &optionImpl{func(opts *plcOptions) error {
		opts.maxWorkTimeForNotCycleTask = d
		return nil
	}}
}

// WithIdleSleep sets how long Run sleeps after a tick in which no task was
// ready, so a fully idle scheduler does not spin. Surfaced from the
// general configuration file's task_setting.return_time_work field.
func WithIdleSleep(d time.Duration) Option {
	return &optionImpl{func(opts *plcOptions) error {
		opts.idleSleep = d
		return nil
	}}
}

// resolvePlcOptions applies Option instances to plcOptions.
func resolvePlcOptions(opts []Option) (*plcOptions, error) {
	cfg := &plcOptions{
		logger:    NoopLogger(),
		now:       time.Now,
		idleSleep: time.Millisecond,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPlc(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
