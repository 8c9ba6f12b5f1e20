package debug

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mangahub/internal/tcp"
	"mangahub/internal/udp"
	"mangahub/pkg/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen for TCP progress and UDP notification frames",
	Long:  "Opens one session against each bus, the same way the gateway does, and prints every frame received",
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetString("user-id")
		host := viper.GetString("server.host")
		tcpAddr := fmt.Sprintf("%s:%d", host, viper.GetInt("server.tcp_port"))
		udpAddr := fmt.Sprintf("%s:%d", host, viper.GetInt("server.udp_port"))

		fmt.Printf("listening as user_id=%s\n", userID)
		fmt.Printf("tcp bus: %s\n", tcpAddr)
		fmt.Printf("udp bus: %s\n", udpAddr)
		fmt.Println("press Ctrl+C to exit")

		go func() {
			for {
				client := tcp.NewClient(tcpAddr, userID)
				client.OnFrame = func(frame models.ProgressFrame) {
					fmt.Printf("[tcp] %s (%s) read chapter %d of %s\n",
						frame.Username, frame.UserID, frame.Chapter, frame.MangaTitle)
				}
				if err := client.Connect(30 * time.Second); err != nil {
					fmt.Printf("[tcp] connect failed: %v, retrying in 5s\n", err)
					time.Sleep(5 * time.Second)
					continue
				}
				fmt.Println("[tcp] connected")
				return
			}
		}()

		go func() {
			for {
				client := udp.NewClient(udpAddr)
				client.OnNotification = func(frame models.NotificationFrame) {
					fmt.Printf("[udp] [%s] %s (manga_id=%s)\n", frame.Type, frame.Message, frame.MangaID)
				}
				if err := client.Connect(25 * time.Second); err != nil {
					fmt.Printf("[udp] connect failed: %v, retrying in 5s\n", err)
					time.Sleep(5 * time.Second)
					continue
				}
				fmt.Println("[udp] connected")
				return
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		fmt.Println("\nstopping listeners")
	},
}

func init() {
	listenCmd.Flags().String("user-id", "cli-tester", "user_id to subscribe as on the TCP bus")
	DebugCmd.AddCommand(listenCmd)
}
