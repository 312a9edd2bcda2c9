package espingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Config"
	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.IngestorService/client"
	logger "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Logger"
)

// queuedReading is one distance message waiting for the batch writer.
type queuedReading struct {
	DeviceID   string
	Distance   float64
	ReceivedAt time.Time
}

// Ingestor bridges device MQTT traffic to the API service. Distance readings
// are buffered and flushed in batches; button presses are forwarded
// immediately because they drive actuation.
type Ingestor struct {
	cfg        *config.IngestorConfig
	apiClient  *client.APIClient
	mqttClient mqtt.Client
	msgCh      chan queuedReading
	wg         sync.WaitGroup
	logger     *logger.Logger
}

func New(cfg *config.IngestorConfig, apiClient *client.APIClient, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		apiClient: apiClient,
		msgCh:     make(chan queuedReading, 4096),
		logger:    logger,
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.cfg.GetMQTTBrokerURL()).
		SetClientID(i.cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.MQTT.KeepAlive).
		SetPingTimeout(i.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(i.cfg.MQTT.BrokerUser)
		opts.SetPassword(i.cfg.MQTT.BrokerPass)
	}

	if i.cfg.MQTT.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.MQTT.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.cfg.MQTT.Topic
		i.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, func(cl mqtt.Client, m mqtt.Message) {
			i.onMessage(ctx, cl, m)
		}); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	// batch writer
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.batchWriter(ctx)
	}()

	return nil
}

func (i *Ingestor) Stop() {
	if i.mqttClient != nil && i.mqttClient.IsConnected() {
		i.mqttClient.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

// onMessage routes one MQTT message by its topic kind.
// Expected topics: devices/<device_id>/distance and devices/<device_id>/button
func (i *Ingestor) onMessage(ctx context.Context, _ mqtt.Client, m mqtt.Message) {
	i.logger.Logger.Debug().Str("topic", m.Topic()).Str("payload", string(m.Payload())).Msg("Received MQTT message")

	deviceID, kind, err := parseTopic(m.Topic())
	if err != nil {
		i.logger.Logger.Warn().Str("topic", m.Topic()).Str("expected", "devices/<device_id>/<distance|button>").Msg("Invalid topic format")
		i.publishError(deviceID, "invalid_topic", err.Error())
		return
	}

	switch kind {
	case "distance":
		distance, err := parseDistance(m.Payload())
		if err != nil {
			i.logger.Logger.Warn().Err(err).Str("device_id", deviceID).Msg("Unparseable distance payload")
			i.publishError(deviceID, "invalid_payload", err.Error())
			return
		}
		i.msgCh <- queuedReading{DeviceID: deviceID, Distance: distance, ReceivedAt: time.Now().UTC()}

	case "button":
		button, err := parseButton(m.Payload())
		if err != nil {
			i.logger.Logger.Warn().Err(err).Str("device_id", deviceID).Msg("Unparseable button payload")
			i.publishError(deviceID, "invalid_payload", err.Error())
			return
		}
		// Presses toggle state, so they skip the batch queue
		if err := i.apiClient.PressButton(ctx, deviceID, button); err != nil {
			i.logger.Logger.Error().Err(err).Str("device_id", deviceID).Int("button_number", button).Msg("Error forwarding button press")
			i.publishError(deviceID, "forward_button_error", err.Error())
		}

	default:
		i.logger.Logger.Debug().Str("topic", m.Topic()).Msg("Ignoring unrecognized topic kind")
	}
}

func (i *Ingestor) batchWriter(ctx context.Context) {
	batch := make([]queuedReading, 0, i.cfg.Batch.Size)
	timer := time.NewTimer(i.cfg.Batch.Window)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		i.logger.Logger.Info().Int("batch_size", len(batch)).Msg("Flushing readings to API Service")

		for _, reading := range batch {
			if err := i.apiClient.CreateReading(ctx, reading.DeviceID, reading.Distance); err != nil {
				i.logger.Logger.Error().Err(err).Str("device_id", reading.DeviceID).Msg("Error forwarding reading")
				i.publishError(reading.DeviceID, "forward_reading_error", err.Error())
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case rd, ok := <-i.msgCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rd)
			if len(batch) >= i.cfg.Batch.Size {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(i.cfg.Batch.Window)
			}
		case <-timer.C:
			flush()
			timer.Reset(i.cfg.Batch.Window)
		}
	}
}

// parseTopic extracts the device id and message kind from a topic.
func parseTopic(topic string) (deviceID, kind string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "devices" || parts[1] == "" {
		deviceID = "unknown"
		if len(parts) >= 2 && parts[1] != "" {
			deviceID = parts[1]
		}
		return deviceID, "", fmt.Errorf("invalid topic format: %s, expected: devices/<device_id>/<distance|button>", topic)
	}
	return parts[1], parts[2], nil
}

// parseDistance accepts either {"distance": 12.3} or a bare number.
func parseDistance(payload []byte) (float64, error) {
	var body struct {
		Distance *float64 `json:"distance"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Distance != nil {
		return *body.Distance, nil
	}

	distance, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return 0, fmt.Errorf("payload is neither a distance object nor a number: %q", string(payload))
	}
	return distance, nil
}

// parseButton accepts either {"button_number": 2} or a bare integer.
func parseButton(payload []byte) (int, error) {
	var body struct {
		ButtonNumber *int `json:"button_number"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.ButtonNumber != nil {
		return *body.ButtonNumber, nil
	}

	button, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return 0, fmt.Errorf("payload is neither a button object nor an integer: %q", string(payload))
	}
	return button, nil
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// publishError publishes an error message to the error topic for device feedback
func (i *Ingestor) publishError(deviceID, errorType, message string) {
	if i.mqttClient == nil || !i.mqttClient.IsConnected() {
		return
	}

	errorPayload := map[string]interface{}{
		"error_type": errorType,
		"message":    message,
		"device_id":  deviceID,
		"timestamp":  time.Now().UTC(),
	}

	payloadJSON, err := json.Marshal(errorPayload)
	if err != nil {
		i.logger.Logger.Error().Err(err).Msg("Failed to marshal error payload")
		return
	}

	errorTopic := fmt.Sprintf("ingestor/errors/%s", deviceID)
	token := i.mqttClient.Publish(errorTopic, 1, false, payloadJSON)

	if token.Wait() && token.Error() != nil {
		i.logger.Logger.Error().Err(token.Error()).Str("topic", errorTopic).Msg("Failed to publish error")
	}
}
