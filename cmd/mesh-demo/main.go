// mesh-demo exercises the protocol end to end: it generates two
// identities, signs a demo.echo request from one to the other, runs it
// through the inbound acceptance pipeline, and demonstrates tamper and
// replay rejection. With -relay it also submits the envelope to a
// running relay and waits for it to come back on a subscription.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentmesh/go-sdk/internal/config"
	"agentmesh/go-sdk/internal/inbound"
	"agentmesh/go-sdk/internal/platform/privacylog"
	"agentmesh/go-sdk/internal/relay"
	"agentmesh/go-sdk/pkg/envelope"
	"agentmesh/go-sdk/pkg/identity"
)

func main() {
	relayURL := flag.String("relay", "", "relay base URL; empty runs the offline demo only")
	configPath := flag.String("config", "", "path to mesh.yaml (optional)")
	flag.Parse()

	logger := slog.New(privacylog.Wrap(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.LoadFromPath(*configPath)
	if *relayURL != "" {
		cfg.Relay.BaseURL = *relayURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alice, err := identity.Generate()
	if err != nil {
		log.Fatalf("mesh-demo: keygen failed: %v", err)
	}
	bob, err := identity.Generate()
	if err != nil {
		log.Fatalf("mesh-demo: keygen failed: %v", err)
	}

	env, err := envelope.NewBuilder().
		ID(envelope.NewID()).
		Type(envelope.TypeRequest).
		Sender(envelope.Party{ID: alice.DID, Name: "alice"}).
		Recipient(envelope.Party{ID: bob.DID, Name: "bob"}).
		Payload(map[string]any{
			"intent": "demo.echo",
			"params": map[string]any{"text": "hello"},
		}).
		Build()
	if err != nil {
		log.Fatalf("mesh-demo: build failed: %v", err)
	}
	signed, err := envelope.Sign(env, alice.PrivateKey)
	if err != nil {
		log.Fatalf("mesh-demo: sign failed: %v", err)
	}
	fmt.Printf("signed %s from %s\n", signed.ID, alice.DID)
	fmt.Printf("verify: %v\n", envelope.Verify(signed))

	acceptor := inbound.NewAcceptor(inbound.Options{
		FreshnessWindow: cfg.Inbound.FreshnessWindow,
		ReplayRetention: cfg.Inbound.ReplayRetention,
		SenderRPS:       cfg.Inbound.SenderRPS,
		SenderBurst:     cfg.Inbound.SenderBurst,
		Logger:          logger,
	})
	fmt.Printf("first delivery:  %+v\n", acceptor.Check(signed))
	fmt.Printf("replayed:        %+v\n", acceptor.Check(signed))

	tampered := signed
	tampered.Payload = []byte(`{"intent":"demo.echo","params":{"text":"hello!"}}`)
	fmt.Printf("tampered:        %+v\n", acceptor.Check(tampered))

	if *relayURL == "" {
		return
	}

	client := relay.NewClient(cfg.Relay, logger)
	sub, err := client.Subscribe(ctx, relay.Filter{Recipient: bob.DID})
	if err != nil {
		log.Fatalf("mesh-demo: subscribe failed: %v", err)
	}
	result, err := client.Submit(ctx, signed)
	if err != nil {
		log.Fatalf("mesh-demo: submit failed: %v", err)
	}
	fmt.Printf("relay accepted: %v id=%s\n", result.OK, result.ID)

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for {
		select {
		case <-waitCtx.Done():
			log.Fatal("mesh-demo: envelope did not come back from the relay")
		case batch, ok := <-sub:
			if !ok {
				return
			}
			for _, received := range batch {
				if received.ID == signed.ID {
					fmt.Printf("received back, verify: %v\n", envelope.Verify(received))
					return
				}
			}
		}
	}
}
