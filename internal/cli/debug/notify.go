package debug

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mangahub/pkg/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inject a test notification into the UDP bus",
	Long:  "POSTs a NotificationFrame to the UDP bus's admin trigger port, the same way the gateway does on a library/catalog change",
	RunE: func(cmd *cobra.Command, args []string) error {
		mangaID, _ := cmd.Flags().GetString("manga-id")
		message, _ := cmd.Flags().GetString("message")
		notifType, _ := cmd.Flags().GetString("type")

		frame := models.NotificationFrame{
			Type:      notifType,
			MangaID:   mangaID,
			Message:   message,
			Timestamp: time.Now().Unix(),
		}

		host := viper.GetString("server.host")
		port := viper.GetInt("server.udp_admin_port")
		url := fmt.Sprintf("http://%s:%d/trigger", host, port)

		body, err := json.Marshal(frame)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}

		resp, err := http.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to %s: %w", url, err)
		}
		defer resp.Body.Close()

		fmt.Printf("notification posted to %s: %s\n", url, resp.Status)
		fmt.Printf("  type=%s manga_id=%s message=%q\n", notifType, mangaID, message)
		return nil
	},
}

func init() {
	notifyCmd.Flags().String("manga-id", "", "Manga ID the notification concerns")
	notifyCmd.Flags().String("message", "New chapter released!", "Notification message")
	notifyCmd.Flags().String("type", models.NotificationTypeChapterRelease, "Notification type")
	DebugCmd.AddCommand(notifyCmd)
}
