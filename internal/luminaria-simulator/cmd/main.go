package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	simulator "github.com/LeonardoBeccarini/lumicert/internal/luminaria-simulator"
	"github.com/LeonardoBeccarini/lumicert/pkg/broker"
)

func main() {
	host := pflag.String("host", "localhost", "MQTT broker host")
	port := pflag.Int("port", 1883, "MQTT broker port")
	user := pflag.String("user", "", "MQTT user")
	password := pflag.String("password", "", "MQTT password")
	clientID := pflag.String("client-id", "", "MQTT client ID (random when empty)")
	topic := pflag.String("topic", "lumicert/luminarias", "frame topic; <topic>/status and <topic>/cmd are derived")
	interval := pflag.Duration("interval", 5*time.Second, "publish interval")
	ids := pflag.IntSlice("ids", []int{4, 5, 6}, "luminaria ids")
	seed := pflag.Int64("seed", 0, "random seed (0 = time based)")
	pOver := pflag.Float64("p-overcurrent", 0.05, "overcurrent probability")
	pFail := pflag.Float64("p-fail", 0.03, "low current failure probability")
	pTheft := pflag.Float64("p-theft", 0.02, "energy theft probability")
	pflag.Parse()

	logger := log.New(os.Stdout, "luminaria-sim: ", log.LstdFlags|log.Lmsgprefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := broker.Connect(ctx, broker.Config{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *password,
		ClientID: *clientID,
		Will:     &broker.Will{Topic: *topic + "/status", Payload: "offline", QoS: 1, Retain: true},
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer broker.Close(client)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	prob := simulator.DefaultProbabilities()
	prob.Overcurrent, prob.Fail, prob.Theft = *pOver, *pFail, *pTheft
	gen := simulator.NewGenerator(rand.New(rand.NewSource(*seed)), prob, *ids)

	frames := broker.NewPublisher(client, *topic, 1, true)
	status := broker.NewPublisher(client, *topic+"/status", 1, true)
	sim := simulator.NewSimulator(gen, frames, logger)

	cmds := broker.NewConsumer(client, []string{*topic + "/cmd"}, 1, sim.HandleCommand, logger)
	go func() {
		if err := cmds.Consume(ctx); err != nil {
			logger.Printf("command consumer: %v", err)
		}
	}()

	if err := status.Publish([]byte("online")); err != nil {
		logger.Printf("status: %v", err)
	}
	logger.Printf("publishing %d luminarias every %s on %s", len(*ids), *interval, *topic)
	sim.Run(ctx, *interval)
}
