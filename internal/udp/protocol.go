package udp

import (
	"time"

	"mangahub/pkg/models"
)

// NewChapterReleaseNotification builds a chapter-release UDP datagram.
func NewChapterReleaseNotification(mangaID, message string) models.NotificationFrame {
	return models.NotificationFrame{
		Type:      models.NotificationTypeChapterRelease,
		MangaID:   mangaID,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
}

// NewSystemNotification builds a system UDP datagram.
func NewSystemNotification(message string) models.NotificationFrame {
	return models.NotificationFrame{
		Type:      models.NotificationTypeSystem,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
}
