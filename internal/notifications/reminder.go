package notifications

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Reminder запускает ежеминутную проверку расписаний лекарств.
type Reminder struct {
	cron    *cron.Cron
	service *Service
}

func NewReminder(service *Service) *Reminder {
	return &Reminder{
		cron:    cron.New(),
		service: service,
	}
}

func (r *Reminder) Start() error {
	_, err := r.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		created, err := r.service.RunMedicationReminders(ctx, time.Now())
		if err != nil {
			log.Printf("WARNING: medication reminders run failed: %v", err)
			return
		}
		if created > 0 {
			log.Printf("INFO reminders: created %d medication notifications", created)
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	log.Println("INFO reminders: cron started")
	return nil
}

func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
	log.Println("INFO reminders: cron stopped")
}
