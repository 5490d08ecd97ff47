package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultInterval is how often weather is refetched for watched locations.
const DefaultInterval = 60 * time.Second

const fetchTimeout = 30 * time.Second

// Refresher fetches fresh conditions for a location, bypassing any cache.
type Refresher interface {
	RefreshWeather(ctx context.Context, id int64) (weather.WeatherData, error)
}

// Update is one polling result for one location.
type Update struct {
	LocationID int64
	Data       weather.WeatherData
	Err        error
	At         time.Time
}

// Scheduler periodically refreshes weather for the watched locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	ids       []int64
	interval  time.Duration
	onUpdate  func(Update)
	log       *zap.Logger
}

// New creates a new Scheduler. onUpdate is called once per location per run,
// possibly from several goroutines at once.
func New(ids []int64, interval time.Duration, refresher Refresher, onUpdate func(Update), log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		ids:       ids,
		interval:  interval,
		onUpdate:  onUpdate,
		log:       log.Named("scheduler"),
	}
}

// Start schedules the polling job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.ids) == 0 {
		s.log.Info("no locations to watch; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.poll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) poll() {
	s.log.Debug("running weather refresh job", zap.Int("locations", len(s.ids)))

	var wg sync.WaitGroup
	for _, id := range s.ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			data, err := s.refresher.RefreshWeather(ctx, id)
			if err != nil {
				s.log.Warn("weather refresh failed", zap.Int64("location_id", id), zap.Error(err))
			}
			if s.onUpdate != nil {
				s.onUpdate(Update{LocationID: id, Data: data, Err: err, At: time.Now()})
			}
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
