package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fitstudio/config"
	coachRepo "fitstudio/database/repository/coach"
	customerRepo "fitstudio/database/repository/customer"
	"fitstudio/models"
	"fitstudio/services/notification"
	"fitstudio/services/trigger"
	"fitstudio/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitNotifyWorker runs the async notification worker in background.
func InitNotifyWorker(
	briefs *notification.CoachBriefCache,
	coaches coachRepo.CoachRepository,
	customers customerRepo.CustomerRepository,
) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueue,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeSeatNotice, handleSeatNotice(briefs, coaches, customers))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[NotifyWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotifyWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotifyWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// InitTriggerSweeper materializes upcoming seats from recurring rules
// once an hour. Each rule fires at most once per occurrence, so the
// hourly cadence only bounds how late a seat can appear.
func InitTriggerSweeper(svc trigger.Service) {
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := svc.MaterializeUpcoming(ctx, time.Now()); err != nil {
				log.Printf("[TriggerSweeper] sweep failed: %v", err)
			}
			cancel()
			time.Sleep(time.Hour)
		}
	}()
}

func handleSeatNotice(
	briefs *notification.CoachBriefCache,
	coaches coachRepo.CoachRepository,
	customers customerRepo.CustomerRepository,
) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var notice models.SeatNotice
		if err := json.Unmarshal(task.Payload(), &notice); err != nil {
			log.Printf("[SeatNotice] invalid payload: %v", err)
			return err
		}

		title, body, token, err := renderNotice(ctx, notice, briefs, coaches, customers)
		if err != nil {
			log.Printf("[SeatNotice] failed to render %s for seat %s: %v", notice.Kind, notice.SeatID, err)
			return err
		}
		if token == "" {
			// No push target registered; drop silently.
			return nil
		}

		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: map[string]string{
				"kind":    string(notice.Kind),
				"seat_id": notice.SeatID,
			},
		}
		if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
			log.Printf("[SeatNotice] failed to send push: %v", err)
			return err
		}
		return nil
	}
}

func renderNotice(
	ctx context.Context,
	notice models.SeatNotice,
	briefs *notification.CoachBriefCache,
	coaches coachRepo.CoachRepository,
	customers customerRepo.CustomerRepository,
) (title, body, token string, err error) {
	window := fmt.Sprintf("%s %s-%s", formatDate(notice.Date), formatMinutes(notice.Start), formatMinutes(notice.End))

	switch notice.Kind {
	case models.NoticeCoachConfirmRequired:
		coach, err := coaches.GetByID(ctx, notice.CoachID)
		if err != nil {
			return "", "", "", err
		}
		return "New booking awaiting confirmation",
			fmt.Sprintf("A customer requested %s. Confirm or decline in the app.", window),
			coach.FCMToken, nil

	case models.NoticeCustomerConfirmed, models.NoticeCustomerCancelled:
		brief, err := briefs.GetOrReload(ctx, notice.CoachID)
		if err != nil {
			return "", "", "", err
		}
		customer, err := customers.GetByID(ctx, notice.CustomerID)
		if err != nil {
			return "", "", "", err
		}
		if notice.Kind == models.NoticeCustomerConfirmed {
			return "Booking confirmed",
				fmt.Sprintf("%s confirmed your session %s.", brief.Name, window),
				customer.FCMToken, nil
		}
		return "Booking cancelled",
			fmt.Sprintf("Your session with %s (%s) was cancelled.", brief.Name, window),
			customer.FCMToken, nil
	}
	return "", "", "", fmt.Errorf("unknown notice kind %q", notice.Kind)
}

func formatDate(date int) string {
	return fmt.Sprintf("%04d-%02d-%02d", date/10000, date/100%100, date%100)
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueue,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[NotifyWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
