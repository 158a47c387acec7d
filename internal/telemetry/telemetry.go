package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
	socketio "github.com/googollee/go-socket.io"
)

const (
	TelemetryEvent = "car_telemetry"
	ConnectEvent   = "car_connect"
)

// Client is the subset of the socket.io client the uplink uses.
type Client interface {
	Connect() error
	Emit(event string, msg string)
	Close() error
}

type socketClient struct {
	client *socketio.Client
}

// NewSocketClient dials the telemetry server over socket.io.
func NewSocketClient(server string) (Client, error) {
	socketURI := fmt.Sprintf("http://%s", server)
	client, err := socketio.NewClient(socketURI, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating client - %w", err)
	}

	//Client must have atleast 1 event handler to work
	client.OnEvent("reply", func(s socketio.Conn, msg string) {
		log.Printf("telemetry reply: %s\n", msg)
	})
	return &socketClient{client: client}, nil
}

func (s *socketClient) Connect() error {
	return s.client.Connect()
}

func (s *socketClient) Emit(event string, msg string) {
	s.client.Emit(event, msg)
}

func (s *socketClient) Close() error {
	return s.client.Close()
}

// Message is one telemetry report. MinDistance is -1 when no depth is known.
type Message struct {
	SessionID      string   `json:"session_id"`
	Mode           string   `json:"mode"`
	Gear           string   `json:"gear"`
	Trim           float64  `json:"trim"`
	DepthThreshold float64  `json:"depth_threshold"`
	MinDistance    float64  `json:"min_distance"`
	Braking        bool     `json:"braking"`
	Recording      bool     `json:"recording"`
	RecordingID    string   `json:"recording_id,omitempty"`
	MotorValue     int      `json:"motor_value"`
	SteeringValue  int      `json:"steering_value"`
	LastError      string   `json:"last_error,omitempty"`
	Hud            []string `json:"hud,omitempty"`
	TimeStamp      int64    `json:"time_stamp"`
}

func NewMessage(snap state.Snapshot, hud models.Hud) Message {
	minDistance := snap.MinDistance
	if math.IsInf(minDistance, 0) || math.IsNaN(minDistance) {
		minDistance = -1
	}
	return Message{
		SessionID:      snap.SessionID,
		Mode:           snap.Mode,
		Gear:           snap.Gear,
		Trim:           snap.Trim,
		DepthThreshold: snap.DepthThreshold,
		MinDistance:    minDistance,
		Braking:        snap.Braking,
		Recording:      snap.Recording,
		RecordingID:    snap.RecordingID,
		MotorValue:     snap.MotorValue,
		SteeringValue:  snap.SteeringValue,
		LastError:      snap.LastError,
		Hud:            hud.Lines,
		TimeStamp:      snap.UpdatedAt.UnixMilli(),
	}
}

// Uplink reports the shared state to a remote server. It is read only and
// never feeds commands back into the vehicle.
type Uplink struct {
	cfg    config.TelemetryConfig
	client Client
	state  *state.Store
	hud    <-chan models.Hud
}

func NewUplink(cfg config.TelemetryConfig, client Client, store *state.Store, hud <-chan models.Hud) *Uplink {
	return &Uplink{
		cfg:    cfg,
		client: client,
		state:  store,
		hud:    hud,
	}
}

// Start connects and reports until ctx is done. A failed connection disables
// the uplink without stopping the vehicle.
func (u *Uplink) Start(ctx context.Context) error {
	log.Println("attemping to connect to telemetry server...")
	err := u.client.Connect()
	if err != nil {
		log.Printf("warning: telemetry disabled, error connecting to server - %s\n", err.Error())
		return nil
	}
	log.Println("connected to telemetry server")

	defer func() {
		err := u.client.Close()
		if err != nil {
			log.Printf("error: failed closing telemetry client: %s\n", err.Error())
		}
	}()

	encodedMsg, err := encode(map[string]string{"session_id": u.state.Snapshot().SessionID})
	if err == nil {
		u.client.Emit(ConnectEvent, encodedMsg)
	}

	every := u.cfg.Every
	if every <= 0 {
		every = config.DefaultTelemetryEvery
	}
	reportTicker := time.NewTicker(every)
	defer reportTicker.Stop()

	lastHud := models.Hud{}
	for {
		select {
		case <-ctx.Done():
			log.Printf("stopping telemetry uplink: %s\n", ctx.Err().Error())
			return ctx.Err()
		case hud, ok := <-u.hud:
			if !ok {
				u.hud = nil
				continue
			}
			lastHud = hud
		case <-reportTicker.C:
			u.Report(lastHud)
		}
	}
}

func (u *Uplink) Report(hud models.Hud) {
	encodedMsg, err := encode(NewMessage(u.state.Snapshot(), hud))
	if err != nil {
		log.Printf("error: failed encoding telemetry: %s\n", err.Error())
		return
	}
	u.client.Emit(TelemetryEvent, encodedMsg)
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
