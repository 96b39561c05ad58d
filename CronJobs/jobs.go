package CronJobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/email"
	"gorm.io/gorm"
)

// Schedules use the seconds field: "0 0 7 * * *" is 07:00:00 every day.
const (
	NoticeDigestSchedule  = "0 0 7 * * *"
	TrialReminderSchedule = "0 0 8 * * *"
)

// Reminders emails owners their notices for the day and warns about trials
// that are about to run out.
type Reminders struct {
	cronScheduler *cron.Cron
	db            *gorm.DB
	mail          email.Sender
	now           func() time.Time
}

func NewReminders(db *gorm.DB, mail email.Sender) *Reminders {
	return &Reminders{
		cronScheduler: cron.New(cron.WithSeconds()),
		db:            db,
		mail:          mail,
		now:           time.Now,
	}
}

// Start registers both jobs and starts the scheduler
func (r *Reminders) Start() error {
	if _, err := r.cronScheduler.AddFunc(NoticeDigestSchedule, func() {
		r.run("notice digest", r.SendNoticeDigests)
	}); err != nil {
		return fmt.Errorf("error scheduling notice digest: %w", err)
	}
	if _, err := r.cronScheduler.AddFunc(TrialReminderSchedule, func() {
		r.run("trial reminder", r.SendTrialReminders)
	}); err != nil {
		return fmt.Errorf("error scheduling trial reminder: %w", err)
	}

	r.cronScheduler.Start()
	Logger.Log.Info().Msg("Reminder scheduler started")
	return nil
}

// Stop waits for running jobs to finish
func (r *Reminders) Stop() {
	if r.cronScheduler != nil {
		<-r.cronScheduler.Stop().Done()
		Logger.Log.Info().Msg("Reminder scheduler stopped")
	}
}

func (r *Reminders) run(name string, job func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := job(ctx)
	if err != nil {
		Logger.Log.Error().Err(err).Str("job", name).Int("sent", sent).Msg("scheduled job failed")
		return
	}
	Logger.Log.Info().Str("job", name).Int("sent", sent).Msg("scheduled job finished")
}

// SendNoticeDigests mails each owner the notices scheduled for today.
// It returns how many emails went out.
func (r *Reminders) SendNoticeDigests(ctx context.Context) (int, error) {
	var notices []Models.Notice
	err := r.db.WithContext(ctx).
		Where("scheduled_for = ?", Models.Day(r.now())).
		Order("owner_id, created_at").
		Find(&notices).Error
	if err != nil {
		return 0, fmt.Errorf("load notices: %w", err)
	}

	byOwner := map[string][]Models.Notice{}
	var owners []string
	for _, n := range notices {
		if _, ok := byOwner[n.OwnerID]; !ok {
			owners = append(owners, n.OwnerID)
		}
		byOwner[n.OwnerID] = append(byOwner[n.OwnerID], n)
	}
	if len(owners) == 0 {
		return 0, nil
	}

	var profiles []Models.Profile
	err = r.db.WithContext(ctx).Where("id IN ? AND is_blocked = ?", owners, false).Find(&profiles).Error
	if err != nil {
		return 0, fmt.Errorf("load profiles: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		if err := r.mail.Send(email.NoticeDigest(p, byOwner[p.ID])); err != nil {
			Logger.Log.Warn().Err(err).Str("owner_id", p.ID).Msg("notice digest not sent")
			continue
		}
		sent++
	}
	return sent, nil
}

// SendTrialReminders mails owners whose trial ends within the next 24 hours.
func (r *Reminders) SendTrialReminders(ctx context.Context) (int, error) {
	now := r.now()
	var profiles []Models.Profile
	err := r.db.WithContext(ctx).
		Where("trial_expires_at > ? AND trial_expires_at <= ? AND is_blocked = ?", now, now.Add(24*time.Hour), false).
		Find(&profiles).Error
	if err != nil {
		return 0, fmt.Errorf("load expiring trials: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		if err := r.mail.Send(email.TrialReminder(p)); err != nil {
			Logger.Log.Warn().Err(err).Str("owner_id", p.ID).Msg("trial reminder not sent")
			continue
		}
		sent++
	}
	return sent, nil
}
