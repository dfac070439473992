package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"insulin-infusion/internal/api/models"
	"insulin-infusion/internal/dosing"
)

const anonymousClient = "anonymous"

// Responder answers mode-tagged dose requests published on RequestTopic.
// It keeps no state between messages.
type Responder struct {
	client        mqtt.Client
	requestTopic  string
	responseTopic string
	qos           byte
}

// ResponderConfig holds the topic layout.
type ResponderConfig struct {
	RequestTopic  string // e.g., "insulin/+/dose/request"
	ResponseTopic string // e.g., "insulin/{client_id}/dose/response"
	QoS           byte
}

// RequestEnvelope is the MQTT request payload.
type RequestEnvelope struct {
	RequestID string `json:"request_id,omitempty"`
	models.DoseRequest
}

// ResponseEnvelope carries either Result or Error.
type ResponseEnvelope struct {
	RequestID string              `json:"request_id,omitempty"`
	Result    interface{}         `json:"result,omitempty"`
	Summary   string              `json:"summary,omitempty"`
	Error     *models.ErrorDetail `json:"error,omitempty"`
}

func NewResponder(client mqtt.Client, config ResponderConfig) *Responder {
	return &Responder{
		client:        client,
		requestTopic:  config.RequestTopic,
		responseTopic: config.ResponseTopic,
		qos:           config.QoS,
	}
}

// Start subscribes and blocks until ctx is cancelled.
func (r *Responder) Start(ctx context.Context) error {
	token := r.client.Subscribe(r.requestTopic, r.qos, r.handleMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.requestTopic, token.Error())
	}
	log.Printf("MQTT Responder: Subscribed to %s", r.requestTopic)

	<-ctx.Done()
	log.Println("MQTT Responder: Context cancelled, unsubscribing...")
	if t := r.client.Unsubscribe(r.requestTopic); t.Wait() && t.Error() != nil {
		log.Printf("MQTT Responder: unsubscribe failed: %v", t.Error())
	}
	return nil
}

func (r *Responder) handleMessage(client mqtt.Client, msg mqtt.Message) {
	topic, payload := r.Respond(msg.Topic(), msg.Payload())

	token := client.Publish(topic, r.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		log.Printf("MQTT Responder: failed to publish to %s: %v", topic, token.Error())
		return
	}
	log.Printf("MQTT Responder: answered %s on %s", msg.Topic(), topic)
}

// Respond computes the reply topic and payload for one request.
func (r *Responder) Respond(topic string, payload []byte) (string, []byte) {
	clientID := extractClientID(r.requestTopic, topic)
	if clientID == "" {
		clientID = anonymousClient
	}
	replyTopic := strings.ReplaceAll(r.responseTopic, "{client_id}", clientID)

	var env RequestEnvelope
	var reply ResponseEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		reply.Error = errorDetail(fmt.Errorf("payload is not valid JSON: %w", err))
		return replyTopic, encode(reply)
	}
	reply.RequestID = env.RequestID

	req, err := env.ToModel()
	if err != nil {
		reply.Error = errorDetail(err)
		return replyTopic, encode(reply)
	}
	out, err := dosing.Calculate(req)
	if err != nil {
		reply.Error = errorDetail(err)
		return replyTopic, encode(reply)
	}
	reply.Result = models.NewOutcomeResponse(out)
	reply.Summary = dosing.Describe(out)
	return replyTopic, encode(reply)
}

func errorDetail(err error) *models.ErrorDetail {
	_, body := models.FromError(err)
	return &body.Error
}

func encode(v ResponseEnvelope) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`)
	}
	return b
}

// extractClientID returns the topic segment matched by the "+" in pattern,
// e.g. pattern insulin/+/dose/request and topic insulin/bed-12/dose/request
// give "bed-12".
func extractClientID(pattern, topic string) string {
	ps := strings.Split(pattern, "/")
	ts := strings.Split(topic, "/")
	if len(ps) != len(ts) {
		return ""
	}
	for i, p := range ps {
		if p == "+" {
			return ts[i]
		}
	}
	return ""
}
