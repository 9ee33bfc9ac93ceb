// Package today is the stateful orchestrator for the current day's three slots.
//
// Local storage is the source of truth for editing. The remote store wins only
// at Initialize and when confirming a submission. Every operation resolves
// "today" from the clock at call time, so a long-running session rolls over to
// the next day without a restart.
package today

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/heat"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/remote"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/streak"
	"github.com/julianstephens/topthree/internal/utils"
	"github.com/julianstephens/topthree/internal/validation"
)

// SubmitOutcome is the non-error result of Submit.
type SubmitOutcome int

const (
	Submitted SubmitOutcome = iota
	AlreadySubmitted
)

func (o SubmitOutcome) String() string {
	if o == AlreadySubmitted {
		return "already submitted"
	}
	return "submitted"
}

type Option func(*Controller)

// WithRemote makes the controller authenticated. A nil adapter leaves it local-only.
func WithRemote(a remote.Adapter) Option {
	return func(c *Controller) { c.remote = a }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.clock = now }
}

func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller bridges UI events to the data model for today only.
type Controller struct {
	store  *storage.DailyRecordStore
	remote remote.Adapter
	clock  func() time.Time
	loc    *time.Location
	log    *log.Logger

	mu        sync.Mutex
	texts     [constants.SlotCount]string
	slotErrs  [constants.SlotCount]string
	stats     *models.Stats
	statsDate string
	pending   bool

	wg sync.WaitGroup
}

func New(store *storage.DailyRecordStore, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		clock: time.Now,
		loc:   time.Local,
		log:   logger.With("component", "today"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) now() time.Time {
	return c.clock().In(c.loc)
}

func (c *Controller) todayKey() string {
	return utils.DateKey(c.now())
}

// Authenticated reports whether a remote adapter is configured.
func (c *Controller) Authenticated() bool {
	return c.remote != nil
}

// Initialize loads local state and, when authenticated, lets the remote copy of
// today overwrite it. Remote failures are logged and otherwise ignored.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.texts = c.store.LoadTodayTexts()
	c.slotErrs = [constants.SlotCount]string{}
	c.mu.Unlock()

	if c.remote == nil {
		return
	}

	today := c.todayKey()

	rec, err := c.remote.FetchToday(ctx, today)
	switch {
	case err != nil:
		c.log.Warn("Failed to fetch today's record", "date", today, "error", err)
	case rec != nil:
		c.adoptRemote(today, *rec)
	default:
		c.pushLocalToday(ctx, today)
	}

	c.backfill(ctx, today)
	c.refreshStats(ctx, today)
}

// pushLocalToday sends today's local record when the server has none yet.
func (c *Controller) pushLocalToday(ctx context.Context, today string) {
	c.mu.Lock()
	history := c.store.LoadHistory()
	_, ok := history[today]
	rec := c.currentRecord(history, today)
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.remote.PushToday(ctx, rec); err != nil {
		c.log.Warn("Failed to push today's record", "date", today, "error", err)
	}
}

// backfill pushes past local days the server does not have, so a first login
// carries the local streak up instead of starting the server from zero. Days
// up to the stored sync mark were checked on an earlier start and are skipped.
func (c *Controller) backfill(ctx context.Context, today string) {
	c.mu.Lock()
	history := c.store.LoadHistory()
	mark := c.store.LoadSyncMark()
	c.mu.Unlock()

	last, pushed := mark, 0
	for _, date := range history.SortedDates() {
		if date >= today {
			break
		}
		if date <= mark {
			continue
		}
		existing, err := c.remote.FetchToday(ctx, date)
		if err != nil {
			c.log.Warn("Backfill stopped", "date", date, "error", err)
			break
		}
		if existing == nil {
			if err := c.remote.PushToday(ctx, history[date]); err != nil {
				c.log.Warn("Backfill stopped", "date", date, "error", err)
				break
			}
			pushed++
		}
		last = date
	}

	if last == mark {
		return
	}
	c.mu.Lock()
	err := c.store.SaveSyncMark(last)
	c.mu.Unlock()
	if err != nil {
		c.log.Error("Failed to save sync mark", "error", err)
	}
	c.log.Info("Backfilled history to server", "pushed", pushed, "through", last)
}

func (c *Controller) adoptRemote(today string, rec models.DailyRecord) {
	if rec.Date == "" {
		rec.Date = today
	}
	if result := validation.ValidateRecord(today, rec); result.Blocking() {
		c.log.Warn("Ignoring remote record", "date", today, "report", result.FormatReport())
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.texts = rec.Texts()
	if err := c.store.SaveTodayTexts(c.texts); err != nil {
		c.log.Error("Failed to persist remote slot texts", "error", err)
	}
	history := c.store.LoadHistory()
	history[today] = rec
	if err := c.store.SaveHistory(history); err != nil {
		c.log.Error("Failed to persist remote record", "date", today, "error", err)
	}
	c.log.Debug("Adopted remote record", "date", today, "completed", rec.CompletedCount())
}

// currentRecord returns today's record with the current texts applied. Callers hold mu.
func (c *Controller) currentRecord(history models.History, today string) models.DailyRecord {
	rec, ok := history[today]
	if !ok {
		return models.NewDailyRecord(today, c.texts)
	}
	rec.Date = today
	for i := range rec.Slots {
		rec.Slots[i].Text = c.texts[i]
	}
	return rec
}

func checkIndex(index int) error {
	if index < 0 || index >= constants.SlotCount {
		return fmt.Errorf("%w: %d", cerrors.ErrSlotIndex, index)
	}
	return nil
}

// SetSlotText updates and persists one slot's text. Today's record is created
// if this is the first edit of the day.
func (c *Controller) SetSlotText(index int, text string) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	c.mu.Lock()
	today := c.todayKey()
	c.texts[index] = text
	c.slotErrs[index] = ""

	if err := c.store.SaveTodayTexts(c.texts); err != nil {
		c.log.Error("Failed to persist slot texts", "error", err)
	}
	history := c.store.LoadHistory()
	rec := c.currentRecord(history, today)
	history[today] = rec
	if err := c.store.SaveHistory(history); err != nil {
		c.log.Error("Failed to persist today's record", "date", today, "error", err)
	}
	c.mu.Unlock()

	c.schedulePush(rec)
	return nil
}

// ToggleSlot flips a slot's completion. Completing a slot with blank text is
// rejected with a *cerrors.ValidationError; unchecking always succeeds.
func (c *Controller) ToggleSlot(index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	c.mu.Lock()
	today := c.todayKey()
	history := c.store.LoadHistory()
	rec := c.currentRecord(history, today)

	if err := validation.CheckCompletion(index, rec.Slots[index]); err != nil {
		var ve *cerrors.ValidationError
		if errors.As(err, &ve) {
			c.slotErrs[index] = ve.Message
		}
		c.mu.Unlock()
		return err
	}

	rec.Slots[index].Completed = !rec.Slots[index].Completed
	c.slotErrs[index] = ""
	history[today] = rec
	if err := c.store.SaveHistory(history); err != nil {
		c.log.Error("Failed to persist today's record", "date", today, "error", err)
	}
	c.mu.Unlock()

	c.log.Debug("Toggled slot", "date", today, "slot", index+1, "completed", rec.Slots[index].Completed)
	c.schedulePush(rec)
	return nil
}

// Submit finalizes today. It blocks on the remote round-trip when authenticated.
// A second submit for the same day is a no-op reported as AlreadySubmitted.
func (c *Controller) Submit(ctx context.Context) (SubmitOutcome, error) {
	c.mu.Lock()
	today := c.todayKey()
	if c.store.LoadSubmission(today) != nil {
		c.mu.Unlock()
		return AlreadySubmitted, nil
	}
	if c.pending {
		c.mu.Unlock()
		return Submitted, fmt.Errorf("%w: a submission is already in progress", cerrors.ErrSubmissionFailure)
	}
	c.pending = true
	rec := c.currentRecord(c.store.LoadHistory(), today)
	c.mu.Unlock()

	outcome := Submitted
	if c.remote != nil {
		if err := c.remote.PushToday(ctx, rec); err != nil {
			return c.rollback(today, fmt.Errorf("%w: failed to push today's record: %w", cerrors.ErrSubmissionFailure, err))
		}
		result, err := c.remote.SubmitToday(ctx, today)
		if err != nil {
			return c.rollback(today, fmt.Errorf("%w: %w", cerrors.ErrSubmissionFailure, err))
		}
		if result == remote.SubmitAlreadySubmitted {
			c.log.Info("Remote reports day already submitted, reconciling", "date", today)
			outcome = AlreadySubmitted
		}
	}

	sub := models.SubmissionRecord{
		ID:          uuid.NewString(),
		Date:        today,
		Submitted:   true,
		SubmittedAt: c.now(),
	}

	c.mu.Lock()
	err := c.store.SaveSubmission(sub)
	c.mu.Unlock()
	if err != nil {
		return c.rollback(today, fmt.Errorf("%w: %w", cerrors.ErrSubmissionFailure, err))
	}

	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()

	c.log.Info("Day submitted", "date", today, "outcome", outcome.String(), "completed", rec.CompletedCount())
	if c.remote != nil {
		c.refreshStats(ctx, today)
	}
	return outcome, nil
}

func (c *Controller) rollback(today string, err error) (SubmitOutcome, error) {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
	c.log.Warn("Submission failed", "date", today, "error", err)
	return Submitted, err
}

// schedulePush sends a snapshot of rec to the remote in the background.
func (c *Controller) schedulePush(rec models.DailyRecord) {
	if c.remote == nil {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx := context.Background()
		if err := c.remote.PushToday(ctx, rec); err != nil {
			c.log.Warn("Background sync failed", "date", rec.Date, "error", err)
			return
		}
		c.refreshStats(ctx, rec.Date)
	}()
}

func (c *Controller) refreshStats(ctx context.Context, today string) {
	stats, err := c.remote.FetchStats(ctx, today)
	if err != nil {
		c.log.Warn("Failed to fetch remote stats", "date", today, "error", err)
		return
	}
	if stats == nil {
		return
	}

	c.mu.Lock()
	c.stats = stats
	c.statsDate = today
	c.mu.Unlock()
}

// Close waits for in-flight background pushes.
func (c *Controller) Close() {
	c.wg.Wait()
}

// Slots returns today's three slots.
func (c *Controller) Slots() [constants.SlotCount]models.TaskSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.currentRecord(c.store.LoadHistory(), c.todayKey())
	return rec.Slots
}

// SlotError returns the validation message for a slot, or "".
func (c *Controller) SlotError(index int) string {
	if checkIndex(index) != nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slotErrs[index]
}

// Stats re-derives the display values. Server stats for today override the
// local streak and total; heat follows whichever streak is in effect.
func (c *Controller) Stats() models.DerivedStats {
	c.mu.Lock()
	now := c.now()
	today := utils.DateKey(now)
	history := c.store.LoadHistory()
	local := streak.ComputeStats(history, now)
	if c.stats != nil && c.statsDate == today {
		local = *c.stats
	}
	c.mu.Unlock()

	return models.DerivedStats{
		Streak:           local.Streak,
		TotalCompletions: local.TotalCompletions,
		HeatLevel:        heat.ComputeHeatLevel(history, now, local.Streak),
		MomentumHours:    streak.MomentumHours(now, local.Streak),
	}
}

// State reports where today is in its lifecycle.
func (c *Controller) State() models.DayState {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := c.todayKey()
	if c.store.LoadSubmission(today) != nil {
		return models.DaySubmitted
	}
	rec, ok := c.store.LoadHistory()[today]
	switch {
	case !ok:
		return models.DayNotStarted
	case rec.AllComplete():
		return models.DayAllThreeComplete
	default:
		return models.DayInProgress
	}
}

// Pending reports whether a submit is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Submission returns today's submission, or nil.
func (c *Controller) Submission() *models.SubmissionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.LoadSubmission(c.todayKey())
}

// Timeline returns the heat timeline for the last days days.
func (c *Controller) Timeline(days int) []heat.DayHeat {
	c.mu.Lock()
	history := c.store.LoadHistory()
	c.mu.Unlock()
	return heat.Timeline(history, c.now(), days)
}

// Now exposes the controller's clock in its location.
func (c *Controller) Now() time.Time {
	return c.now()
}
