package luminaria_simulator

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// ====== Tunables ======
const (
	relayOnBelowLux = 60.0
	overcurrentMA   = 112.5

	ModoAuto   = "AUTO"
	ModoManual = "MANUAL"
)

// Probabilities of the simulated events per luminaria and frame, in [0..1].
type Probabilities struct {
	Overcurrent    float64
	Fail           float64
	Theft          float64
	DayConsumption float64
	SensorFail     float64
	SensorDiscrep  float64
}

func DefaultProbabilities() Probabilities {
	return Probabilities{
		Overcurrent:    0.05,
		Fail:           0.03,
		Theft:          0.02,
		DayConsumption: 0.10,
		SensorFail:     0.01,
		SensorDiscrep:  0.01,
	}
}

type lamp struct {
	relay  bool
	pinned bool // relay forced by a command, ignores the lux rule

	fails, overs, dayUse int // consecutive events
}

// Generator produces controller frames for a fixed set of luminarias.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	prob  Probabilities
	ids   []int
	lamps map[int]*lamp
	auto  bool
	bank  [3]bool
}

func NewGenerator(rng *rand.Rand, prob Probabilities, ids []int) *Generator {
	g := &Generator{rng: rng, prob: prob, ids: append([]int(nil), ids...), lamps: map[int]*lamp{}, auto: true}
	for _, id := range ids {
		g.lamps[id] = &lamp{}
	}
	return g
}

func (g *Generator) uniform(lo, hi float64) float64 { return lo + g.rng.Float64()*(hi-lo) }

func (g *Generator) chance(p float64) bool { return g.rng.Float64() < p }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Lux models daylight: bright between 06:00 and 18:00, dark otherwise.
func (g *Generator) lux(now time.Time) float64 {
	if h := now.Hour(); h >= 6 && h < 18 {
		return g.uniform(200, 1000)
	}
	return g.uniform(0, 50)
}

// Next builds the frame for instant now.
func (g *Generator) Next(now time.Time) messages.TelemetryFrame {
	g.mu.Lock()
	defer g.mu.Unlock()

	lux := g.lux(now)
	modo := ModoManual
	if g.auto {
		modo = ModoAuto
	}
	f := messages.TelemetryFrame{
		TS:    now.Unix(),
		TSISO: now.Format("2006-01-02T15:04:05"),
		Modo:  modo,
		Lux:   round(lux, 1),
		Alarms: messages.FrameAlarms{
			BH1Fail:   g.chance(g.prob.SensorFail),
			BHDiscrep: g.chance(g.prob.SensorDiscrep),
		},
		Bank:       map[string]bool{"C1": g.bank[0], "C2": g.bank[1], "C3": g.bank[2]},
		Luminarias: make([]messages.FrameLuminaria, 0, len(g.ids)),
	}
	for _, id := range g.ids {
		f.Luminarias = append(f.Luminarias, g.luminaria(id, lux))
	}
	return f
}

func (g *Generator) luminaria(id int, lux float64) messages.FrameLuminaria {
	l := g.lamps[id]
	if g.auto && !l.pinned {
		l.relay = lux < relayOnBelowLux
	}

	var volts, mA float64
	var failLow, theft, over bool
	if l.relay {
		volts = g.uniform(11.5, 12.5)
		mA = g.uniform(40, 100)

		// relay ON with almost no current
		if g.chance(g.prob.Fail) {
			mA = g.uniform(0, 4)
			failLow = true
			l.fails++
		} else {
			l.fails = 0
		}
		if g.chance(g.prob.Overcurrent) {
			mA = g.uniform(overcurrentMA+2.5, 150)
			over = true
			l.overs++
		} else {
			l.overs = 0
		}
	} else if g.chance(g.prob.Theft) {
		// relay OFF but current flowing
		mA = g.uniform(10, 30)
		theft = true
	}

	if l.relay && lux > 200 && g.chance(g.prob.DayConsumption) {
		l.dayUse++
	} else if !l.relay || lux <= 200 {
		l.dayUse = 0
	}

	return messages.FrameLuminaria{
		ID:             id,
		Name:           "Luminaria " + strconv.Itoa(id),
		Relay:          l.relay,
		OK:             true,
		Volts:          round(volts, 2),
		MilliAmps:      round(mA, 1),
		Watts:          round(volts*mA/1000, 3),
		FailLowCurrent: failLow,
		Theft:          theft,
		Overcurrent:    over,
	}
}

// Streaks returns the consecutive fail, overcurrent and daytime-consumption counts of id.
func (g *Generator) Streaks(id int) (fails, overs, dayUse int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.lamps[id]; ok {
		return l.fails, l.overs, l.dayUse
	}
	return 0, 0, 0
}

func (g *Generator) SetAuto(auto bool) {
	g.mu.Lock()
	g.auto = auto
	g.mu.Unlock()
}

// SetRelay forces the relay of id and returns its previous state.
// pinned=false hands the relay back to the lux rule.
func (g *Generator) SetRelay(id int, on, pinned bool) (prevOn, prevPinned, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.lamps[id]
	if !ok {
		return false, false, false
	}
	prevOn, prevPinned = l.relay, l.pinned
	l.relay, l.pinned = on, pinned
	return prevOn, prevPinned, true
}
