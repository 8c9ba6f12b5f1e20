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

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inject a test progress update into the TCP bus",
	Long:  "POSTs a ProgressFrame to the TCP bus's admin trigger port, the same way the gateway does after a successful PUT /users/progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		mangaTitle, _ := cmd.Flags().GetString("manga-title")
		chapter, _ := cmd.Flags().GetInt("chapter")
		userID, _ := cmd.Flags().GetString("user-id")
		username, _ := cmd.Flags().GetString("username")

		frame := models.ProgressFrame{
			UserID:     userID,
			Username:   username,
			MangaTitle: mangaTitle,
			Chapter:    chapter,
			Timestamp:  time.Now().Unix(),
		}

		host := viper.GetString("server.host")
		port := viper.GetInt("server.tcp_admin_port")
		url := fmt.Sprintf("http://%s:%d/trigger", host, port)

		body, err := json.Marshal(frame)
		if err != nil {
			return fmt.Errorf("marshal progress frame: %w", err)
		}

		resp, err := http.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to %s: %w", url, err)
		}
		defer resp.Body.Close()

		fmt.Printf("progress frame posted to %s: %s\n", url, resp.Status)
		fmt.Printf("  user=%s manga=%q chapter=%d\n", userID, mangaTitle, chapter)
		return nil
	},
}

func init() {
	syncCmd.Flags().String("manga-title", "", "Manga title carried in the frame")
	syncCmd.Flags().Int("chapter", 1, "Chapter number")
	syncCmd.Flags().String("user-id", "cli-tester", "User ID")
	syncCmd.Flags().String("username", "cli-tester", "Username")
	DebugCmd.AddCommand(syncCmd)
}
