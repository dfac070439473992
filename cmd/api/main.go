package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insulin-infusion/internal/api"
	"insulin-infusion/internal/config"
	"insulin-infusion/internal/mqtt"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional MQTT transport
	if cfg.MQTT.Enabled {
		log.Println("Connecting to MQTT broker...")
		client, err := mqtt.NewClient(mqtt.ClientConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			log.Fatalf("Failed to initialize MQTT client: %v", err)
		}
		defer client.Close()

		responder := mqtt.NewResponder(client.GetNativeClient(), mqtt.ResponderConfig{
			RequestTopic:  cfg.MQTT.RequestTopic,
			ResponseTopic: cfg.MQTT.ResponseTopic,
			QoS:           cfg.MQTT.QoSLevel(),
		})
		go func() {
			if err := responder.Start(ctx); err != nil {
				log.Printf("MQTT Responder: %v", err)
			}
		}()
		log.Printf("MQTT: answering %s on %s", cfg.MQTT.RequestTopic, cfg.MQTT.ResponseTopic)
	} else {
		log.Println("MQTT disabled")
	}

	router := api.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Shutdown complete")
}
