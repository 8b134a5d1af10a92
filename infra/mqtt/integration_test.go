//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/fieldroute/core/model"
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// startMosquitto launches a disposable broker and returns its URL.
func startMosquitto(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(mosquittoConf), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	deadline := time.Now().Add(5 * time.Second)
	for {
		cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("probe"))
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return broker
		}
		if time.Now().After(deadline) {
			t.Fatalf("broker not ready: %v", token.Error())
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestPublishScheduleToBroker(t *testing.T) {
	broker := startMosquitto(t)

	received := make(chan RouteMessage, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("tablet-t1"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)

	pub, err := NewPahoPublisher(Config{Broker: broker, ClientID: "fieldroute", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Disconnect()

	sched := model.Schedule{"t1": {{JobID: "j1", TechnicianID: "t1", ArrivalTime: "08:15"}}}
	if err := pub.PublishSchedule(context.Background(), "run-42", sched); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// The retained message is delivered to a late subscriber.
	token := sub.Subscribe(pub.Topic("t1"), 1, func(_ paho.Client, m paho.Message) {
		var msg RouteMessage
		if err := json.Unmarshal(m.Payload(), &msg); err == nil {
			select {
			case received <- msg:
			default:
			}
		}
	})
	if token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	select {
	case msg := <-received:
		if msg.RunID != "run-42" || len(msg.Stops) != 1 {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("route message not received")
	}
}
