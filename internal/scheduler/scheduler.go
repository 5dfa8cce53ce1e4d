package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"postsmith/internal/database"
	"postsmith/internal/notify"
	"postsmith/internal/pipeline"
)

const (
	DailyPostSpec         = "0 7 * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0

	topicRunTimeout = 15 * time.Minute
)

// Scheduler regenerates a post for every watched topic once a day.
type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
	db       *database.Database
	notifier *notify.TelegramNotifier
	log      *slog.Logger
}

func New(
	ctx context.Context,
	p *pipeline.Pipeline,
	db *database.Database,
	notifier *notify.TelegramNotifier,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		pipeline: p,
		db:       db,
		notifier: notifier,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(DailyPostSpec, s.runWatchedTopics); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runWatchedTopics() {
	topics, err := s.db.ListTopics(s.ctx)
	if err != nil {
		s.log.ErrorContext(s.ctx, "Failed to list watched topics",
			"error", err)
		return
	}

	for _, topic := range topics {
		if s.ctx.Err() != nil {
			s.log.InfoContext(s.ctx, "Scheduler context is done",
				"error", s.ctx.Err())
			return
		}

		s.runTopic(topic.Query)
	}
}

func (s *Scheduler) runTopic(query string) {
	ctx, cancel := context.WithTimeout(s.ctx, topicRunTimeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, query)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to run pipeline for watched topic",
			"error", err,
			"query", query)
		return
	}

	runID, err := s.db.SaveRun(ctx, result)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to save run",
			"error", err,
			"query", query)
	}

	if err = s.notifier.SendPost(ctx, query, result.Post); err != nil {
		s.log.ErrorContext(ctx, "Failed to deliver post",
			"error", err,
			"query", query,
			"runID", runID)
	}
}
