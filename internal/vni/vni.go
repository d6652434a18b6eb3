// Package vni hands out per-cluster virtual network identifiers.
//
// State lives entirely in the key/value store and nothing is locked. Callers
// must never run two mutating operations against the same cluster at once.
package vni

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/hogwarts-cloud/capturectl/internal/store"
	"github.com/hogwarts-cloud/capturectl/pkg/constants"
	"github.com/samber/lo"
)

var (
	ErrVniOutsideRange = errors.New("vni is outside the acceptable range")
	ErrVniAlreadyUsed  = errors.New("vni has already been assigned")
	ErrPoolExhausted   = errors.New("no available vnis")
)

type Config struct {
	Store   store.Store
	Cluster string
	Min     int
	Max     int
	Logger  *slog.Logger
}

type Allocator struct {
	store   store.Store
	cluster string
	min     int
	max     int
	logger  *slog.Logger
}

// Propose returns the next identifier to use without persisting anything.
// Calling it again before Commit returns the same value.
func (a *Allocator) Propose(ctx context.Context) (int, error) {
	recycled, err := a.recycled(ctx)
	if err != nil {
		return 0, err
	}

	if len(recycled) > 0 {
		return recycled[len(recycled)-1], nil
	}

	highWaterMark, err := a.highWaterMark(ctx)
	if err != nil {
		return 0, err
	}

	user, err := a.userRegistered(ctx)
	if err != nil {
		return 0, err
	}

	next := highWaterMark + 1
	for lo.Contains(user, next) {
		next++
	}

	if next > a.max {
		return 0, fmt.Errorf("%w in range %d-%d", ErrPoolExhausted, a.min, a.max)
	}

	return next, nil
}

// Commit records that a proposed identifier was consumed.
func (a *Allocator) Commit(ctx context.Context, vni int) error {
	if err := a.checkRange(vni); err != nil {
		return err
	}

	recycled, err := a.recycled(ctx)
	if err != nil {
		return err
	}

	highWaterMark, err := a.highWaterMark(ctx)
	if err != nil {
		return err
	}

	if slices.Contains(recycled, vni) {
		if err := a.putRecycled(ctx, lo.Without(recycled, vni)); err != nil {
			return err
		}
	}

	if vni > highWaterMark {
		if err := a.putHighWaterMark(ctx, vni); err != nil {
			return err
		}
	}

	a.logger.Debug("committed vni", "cluster", a.cluster, "vni", vni)

	return nil
}

// RegisterExplicit claims an operator-chosen identifier.
func (a *Allocator) RegisterExplicit(ctx context.Context, vni int) error {
	if err := a.checkRange(vni); err != nil {
		return err
	}

	user, err := a.userRegistered(ctx)
	if err != nil {
		return err
	}

	recycled, err := a.recycled(ctx)
	if err != nil {
		return err
	}

	highWaterMark, err := a.highWaterMark(ctx)
	if err != nil {
		return err
	}

	if slices.Contains(user, vni) {
		return fmt.Errorf("%w: %d was registered by an operator", ErrVniAlreadyUsed, vni)
	}

	isRecycled := slices.Contains(recycled, vni)
	if vni <= highWaterMark && !isRecycled {
		return fmt.Errorf("%w: %d was auto-assigned", ErrVniAlreadyUsed, vni)
	}

	// Leave the recycled pool first: a failure between the two writes may
	// leak the id but never leaves it both registered and proposable.
	if isRecycled {
		if err := a.putRecycled(ctx, lo.Without(recycled, vni)); err != nil {
			return err
		}
	}

	if err := a.putUserRegistered(ctx, append(user, vni)); err != nil {
		return err
	}

	a.logger.Debug("registered user vni", "cluster", a.cluster, "vni", vni)

	return nil
}

func (a *Allocator) IsAvailable(ctx context.Context, vni int) (bool, error) {
	if err := a.checkRange(vni); err != nil {
		return false, err
	}

	user, err := a.userRegistered(ctx)
	if err != nil {
		return false, err
	}

	if slices.Contains(user, vni) {
		return false, nil
	}

	highWaterMark, err := a.highWaterMark(ctx)
	if err != nil {
		return false, err
	}

	if vni > highWaterMark {
		return true, nil
	}

	recycled, err := a.recycled(ctx)
	if err != nil {
		return false, err
	}

	return slices.Contains(recycled, vni), nil
}

// Relinquish releases an identifier. Values above the high-water mark are
// implicitly free and need no recycling.
func (a *Allocator) Relinquish(ctx context.Context, vni int) error {
	if err := a.checkRange(vni); err != nil {
		return err
	}

	user, err := a.userRegistered(ctx)
	if err != nil {
		return err
	}

	recycled, err := a.recycled(ctx)
	if err != nil {
		return err
	}

	highWaterMark, err := a.highWaterMark(ctx)
	if err != nil {
		return err
	}

	if slices.Contains(user, vni) {
		if err := a.putUserRegistered(ctx, lo.Without(user, vni)); err != nil {
			return err
		}
	}

	if vni <= highWaterMark && !slices.Contains(recycled, vni) {
		if err := a.putRecycled(ctx, append(recycled, vni)); err != nil {
			return err
		}
	}

	a.logger.Debug("relinquished vni", "cluster", a.cluster, "vni", vni)

	return nil
}

func (a *Allocator) checkRange(vni int) error {
	if vni < a.min || vni > a.max {
		return fmt.Errorf("%w: %d not in %d-%d", ErrVniOutsideRange, vni, a.min, a.max)
	}

	return nil
}

// highWaterMark starts one below the minimum so the first proposal is the
// minimum itself.
func (a *Allocator) highWaterMark(ctx context.Context) (int, error) {
	key := constants.VniCurrentKey(a.cluster)

	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return a.min - 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get vni high-water mark: %w", err)
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse vni high-water mark %q: %w", raw, err)
	}

	return value, nil
}

func (a *Allocator) putHighWaterMark(ctx context.Context, value int) error {
	if err := a.store.Put(ctx, constants.VniCurrentKey(a.cluster), strconv.Itoa(value), true); err != nil {
		return fmt.Errorf("failed to put vni high-water mark: %w", err)
	}

	return nil
}

func (a *Allocator) userRegistered(ctx context.Context) ([]int, error) {
	return a.getList(ctx, constants.VnisUserKey(a.cluster))
}

func (a *Allocator) putUserRegistered(ctx context.Context, values []int) error {
	slices.Sort(values)
	return a.putList(ctx, constants.VnisUserKey(a.cluster), values)
}

// recycled is a stack; the most recently released value is last.
func (a *Allocator) recycled(ctx context.Context) ([]int, error) {
	return a.getList(ctx, constants.VnisRecycledKey(a.cluster))
}

func (a *Allocator) putRecycled(ctx context.Context, values []int) error {
	return a.putList(ctx, constants.VnisRecycledKey(a.cluster), values)
}

func (a *Allocator) getList(ctx context.Context, key string) ([]int, error) {
	values := make([]int, 0)

	err := store.GetJSON(ctx, a.store, key, &values)
	if errors.Is(err, store.ErrNotFound) {
		return make([]int, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vni list: %w", err)
	}

	return values, nil
}

func (a *Allocator) putList(ctx context.Context, key string, values []int) error {
	if values == nil {
		values = make([]int, 0)
	}

	if err := store.PutJSON(ctx, a.store, key, values); err != nil {
		return fmt.Errorf("failed to put vni list: %w", err)
	}

	return nil
}

func New(cfg Config) *Allocator {
	a := &Allocator{
		store:   cfg.Store,
		cluster: cfg.Cluster,
		min:     cfg.Min,
		max:     cfg.Max,
		logger:  cfg.Logger,
	}

	if a.min == 0 && a.max == 0 {
		a.min = constants.VniMin
		a.max = constants.VniMax
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}
