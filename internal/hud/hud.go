package hud

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
	"github.com/prometheus/procfs"
)

// NetStats looks up the counters of one network device.
type NetStats func(device string) (procfs.NetDevLine, error)

// ProcNetStats reads network counters from /proc for the running process.
func ProcNetStats(device string) (procfs.NetDevLine, error) {
	p, err := procfs.Self()
	if err != nil {
		return procfs.NetDevLine{}, fmt.Errorf("procfs could not get process: %w", err)
	}

	netDev, err := p.NetDev()
	if err != nil {
		return procfs.NetDevLine{}, fmt.Errorf("failed getting netstat: %w", err)
	}

	stats, ok := netDev[device]
	if !ok {
		return procfs.NetDevLine{}, fmt.Errorf("failed getting %s stats: not found", device)
	}
	return stats, nil
}

// Hud periodically renders the shared state for the operator. It never
// writes to the state.
type Hud struct {
	cfg      config.HudConfig
	state    *state.Store
	netStats NetStats

	outputs []chan models.Hud
	ticks   int
	netErr  bool
}

func NewHud(cfg config.HudConfig, store *state.Store, netStats NetStats) *Hud {
	return &Hud{
		cfg:      cfg,
		state:    store,
		netStats: netStats,
	}
}

// Subscribe returns a channel receiving every rendered frame. Slow readers
// miss frames.
func (h *Hud) Subscribe() <-chan models.Hud {
	out := make(chan models.Hud, 1)
	h.outputs = append(h.outputs, out)
	return out
}

func (h *Hud) Start(ctx context.Context) error {
	log.Println("starting hud")
	interval := h.cfg.Interval
	if interval <= 0 {
		interval = config.DefaultHudInterval
	}
	hudTicker := time.NewTicker(interval)
	defer hudTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("stopping hud: %s\n", ctx.Err().Error())
			return ctx.Err()
		case <-hudTicker.C:
			h.Tick()
		}
	}
}

// Tick renders one frame, logs it every LogEvery ticks and fans it out.
func (h *Hud) Tick() models.Hud {
	hud := Render(h.state.Snapshot(), h.readNet())

	h.ticks++
	if h.cfg.LogEvery > 0 && h.ticks%h.cfg.LogEvery == 0 {
		for _, line := range hud.Lines {
			log.Printf("hud: %s\n", line)
		}
	}

	for _, out := range h.outputs {
		select {
		case out <- hud:
		default:
		}
	}
	return hud
}

func (h *Hud) readNet() *procfs.NetDevLine {
	if h.netStats == nil || h.cfg.NetDevice == "" {
		return nil
	}

	stats, err := h.netStats(h.cfg.NetDevice)
	if err != nil {
		if !h.netErr {
			log.Printf("warning: hud network stats unavailable: %s\n", err.Error())
			h.netErr = true
		}
		return nil
	}
	h.netErr = false
	return &stats
}

// Render formats a snapshot into HUD lines. The network line is omitted when
// netInfo is nil.
func Render(snap state.Snapshot, netInfo *procfs.NetDevLine) models.Hud {
	lines := make([]string, 0, 4)

	lines = append(lines, fmt.Sprintf("Mode:%s | Gear:%s | Motor:%d | Steer:%d | Trim:%.2f",
		snap.Mode,
		snap.Gear,
		snap.MotorValue,
		snap.SteeringValue,
		snap.Trim,
	))

	distance := "--"
	if !math.IsInf(snap.MinDistance, 0) && !math.IsNaN(snap.MinDistance) {
		distance = fmt.Sprintf("%.2fm", snap.MinDistance)
	}
	recording := "off"
	if snap.Recording {
		recording = "on"
	}
	lines = append(lines, fmt.Sprintf("Dist:%s | Threshold:%.2fm | Braking:%t | Rec:%s",
		distance,
		snap.DepthThreshold,
		snap.Braking,
		recording,
	))

	if netInfo != nil {
		lines = append(lines, fmt.Sprintf("RxPkt:%d | RxErr:%d | RxDrop: %d | TxPkt:%d | TxErr:%d | TxDrop: %d",
			netInfo.RxPackets,
			netInfo.RxErrors,
			netInfo.RxDropped,
			netInfo.TxPackets,
			netInfo.TxErrors,
			netInfo.TxDropped,
		))
	}

	if snap.LastError != "" {
		lines = append(lines, fmt.Sprintf("Err:%s", snap.LastError))
	}

	return models.Hud{
		Lines: lines,
	}
}
