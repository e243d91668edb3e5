package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"bplcommander/config"
	"bplcommander/models"
)

// NotificationWorker delivers the email copy of in-app notifications. It polls
// for rows without an EmailedAt stamp and sends one email per row to users who
// have email delivery enabled. Failures are logged and retried on the next
// tick; a user with email disabled gets stamped without a send so the row is
// not picked up again.
type NotificationWorker struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewNotificationWorker(db *gorm.DB, logger *logrus.Entry) *NotificationWorker {
	return &NotificationWorker{DB: db, Logger: logger}
}

func (nw *NotificationWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	nw.Logger.Info("Notification worker started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			nw.Logger.Info("Notification worker shutting down...")
			return
		case <-ticker.C:
			nw.processPending()
		}
	}
}

func (nw *NotificationWorker) processPending() {
	if config.AppConfig.SMTP.Host == "" {
		return
	}

	var pending []models.Notification
	err := nw.DB.
		Preload("User").
		Where("emailed_at IS NULL").
		Order("created_at ASC").
		Limit(50).
		Find(&pending).Error
	if err != nil {
		nw.Logger.Errorf("Error fetching pending notifications: %v", err)
		return
	}

	for i := range pending {
		notification := &pending[i]
		if notification.User == nil || !notification.User.IsActive {
			nw.stamp(notification)
			continue
		}
		if !notification.User.NotificationSettings.Email {
			nw.stamp(notification)
			continue
		}
		if err := nw.sendEmail(notification); err != nil {
			nw.Logger.Errorf("Error emailing notification %d: %v", notification.ID, err)
			continue
		}
		nw.stamp(notification)
	}
}

func (nw *NotificationWorker) sendEmail(notification *models.Notification) error {
	smtp := config.AppConfig.SMTP

	m := gomail.NewMessage()
	m.SetAddressHeader("From", smtp.FromEmail, smtp.FromName)
	m.SetHeader("To", notification.User.Email)
	m.SetHeader("Subject", notification.Title)

	body := notification.Message
	if notification.ActionURL != nil {
		body = fmt.Sprintf("%s\n\n%s", body, *notification.ActionURL)
	}
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	return d.DialAndSend(m)
}

func (nw *NotificationWorker) stamp(notification *models.Notification) {
	now := time.Now()
	err := nw.DB.Model(notification).Update("emailed_at", now).Error
	if err != nil {
		nw.Logger.Errorf("Error stamping notification %d: %v", notification.ID, err)
	}
}
