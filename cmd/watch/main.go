// Watch - remote reviewer CLI
//
// Subscribes to a running dashboard's websocket feeds and prints
// status transitions and alerts as they happen. Lets a reviewer
// follow a session from another machine without opening the browser
// dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/proctorlabs/go-vigil/internal/log"
	"github.com/proctorlabs/go-vigil/pkg/alert"
	"github.com/proctorlabs/go-vigil/pkg/monitor"
)

func main() {
	var (
		host       = flag.String("host", "localhost:8090", "Dashboard host:port to connect to")
		alertsOnly = flag.Bool("alerts-only", false, "Print alerts but not status transitions")
	)
	flag.Parse()

	log.Init("warn")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", *host)

	if !*alertsOnly {
		go watchStatus(ctx, *host)
	}
	go watchAlerts(ctx, *host)

	<-ctx.Done()
	fmt.Println("\ndone")
}

// watchStatus follows the status feed, printing a line only when the
// status message changes.
func watchStatus(ctx context.Context, host string) {
	var last string
	subscribe(ctx, "ws://"+host+"/ws/status", func(data []byte) {
		var snap monitor.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Warn("bad status payload", "error", err)
			return
		}
		if snap.Status.Message == last {
			return
		}
		last = snap.Status.Message
		fmt.Printf("%s  %-7s  attention=%-3d faces=%d  %s\n",
			snap.Timestamp.Format("15:04:05"),
			snap.Status.Status,
			snap.Detection.EstimatedAttention,
			snap.Detection.FaceCount,
			snap.Status.Message)
	})
}

func watchAlerts(ctx context.Context, host string) {
	subscribe(ctx, "ws://"+host+"/ws/alerts", func(data []byte) {
		var a alert.Alert
		if err := json.Unmarshal(data, &a); err != nil {
			log.Warn("bad alert payload", "error", err)
			return
		}
		fmt.Printf("%s  ALERT %-7s  %s\n",
			a.Timestamp.Format("15:04:05"), a.Type, a.Message)
	})
}

// subscribe maintains a websocket subscription, reconnecting with
// backoff until the context is cancelled. Each received message is
// passed to handle.
func subscribe(ctx context.Context, url string, handle func([]byte)) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			log.Warn("dial failed, retrying", "url", url, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 10*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		readLoop(ctx, conn, handle)
		conn.Close()
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, handle func([]byte)) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			handle(data)
		}
	}()

	select {
	case <-ctx.Done():
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
	}
}
