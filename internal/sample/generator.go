package sample

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Mode selects the anomaly injection policy.
type Mode string

const (
	// ModeProbability replaces the normal draw with a widened Gaussian at a
	// fixed probability. Matches the standalone driver behavior.
	ModeProbability Mode = "probability"
	// ModeWeighted alternates normal and anomalous tasks at a fixed weight
	// ratio, with spike/drop anomalies and per-device baselines. Matches the
	// interactive driver behavior.
	ModeWeighted Mode = "weighted"
)

const (
	defaultBaseline     = 100.0
	probabilityStdDev   = 20.0
	weightedStdDev      = 15.0
	anomalyStdDev       = 100.0
	anomalyWiden        = 3.0
	normalTaskWeight    = 10
	anomalousTaskWeight = 2
	defaultAnomalyProb  = 0.05
)

// Options configure a Generator.
type Options struct {
	Mode        Mode
	AnomalyProb float64 // ModeProbability only; fraction in [0,1]
	DevicePool  int     // number of distinct device identifiers
	Rand        *rand.Rand
	Clock       Clock
}

func (o *Options) normalize() {
	if o.Mode == "" {
		o.Mode = ModeProbability
	}
	// Zero disables anomalies; negative asks for the default.
	if o.AnomalyProb < 0 {
		o.AnomalyProb = defaultAnomalyProb
	}
	if o.DevicePool <= 0 {
		if o.Mode == ModeWeighted {
			o.DevicePool = 1000
		} else {
			o.DevicePool = 100
		}
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// Generator produces synthetic telemetry samples around a request-rate
// baseline, periodically perturbed into anomalous shapes.
//
// All randomness flows through the injected rand.Rand so runs can be made
// reproducible with a fixed seed.
type Generator struct {
	mu        sync.Mutex
	opt       Options
	baselines map[string]float64
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opt Options) *Generator {
	opt.normalize()
	return &Generator{
		opt:       opt,
		baselines: make(map[string]float64),
	}
}

// Next produces one sample for a device picked uniformly from the pool.
func (g *Generator) Next() Sample {
	g.mu.Lock()
	defer g.mu.Unlock()
	device := fmt.Sprintf("device_%d", g.opt.Rand.Intn(g.opt.DevicePool)+1)
	return g.next(device)
}

// NextFor produces one sample for a specific device identifier.
func (g *Generator) NextFor(deviceID string) Sample {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next(deviceID)
}

func (g *Generator) next(deviceID string) Sample {
	var rps float64
	switch g.opt.Mode {
	case ModeWeighted:
		rps = g.weightedDraw(deviceID)
	default:
		rps = g.probabilityDraw()
	}

	return Sample{
		Timestamp: g.opt.Clock().Unix(),
		CPU:       g.opt.Rand.Float64() * 100,
		RPS:       clampNonNegative(rps),
		DeviceID:  deviceID,
	}
}

// probabilityDraw draws around the global baseline, replacing the value with
// a 3x-widened Gaussian at the configured anomaly probability.
func (g *Generator) probabilityDraw() float64 {
	rnd := g.opt.Rand
	rps := defaultBaseline + rnd.NormFloat64()*probabilityStdDev
	if rnd.Float64() < g.opt.AnomalyProb {
		rps = defaultBaseline + rnd.NormFloat64()*anomalyStdDev*anomalyWiden
	}
	return rps
}

// weightedDraw picks the normal or anomalous task at a 10:2 weight ratio.
// Anomalies are a sharp spike or drop relative to the device's baseline.
func (g *Generator) weightedDraw(deviceID string) float64 {
	rnd := g.opt.Rand
	base := g.deviceBaseline(deviceID)

	if rnd.Intn(normalTaskWeight+anomalousTaskWeight) < normalTaskWeight {
		return base + rnd.NormFloat64()*weightedStdDev
	}

	if rnd.Intn(2) == 0 {
		// spike
		return base + 150 + rnd.Float64()*150
	}
	// drop
	return base - (100 + rnd.Float64()*100)
}

// deviceBaseline lazily assigns each device a stable baseline in [80,120).
func (g *Generator) deviceBaseline(deviceID string) float64 {
	if base, ok := g.baselines[deviceID]; ok {
		return base
	}
	base := 80 + g.opt.Rand.Float64()*40
	g.baselines[deviceID] = base
	return base
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
