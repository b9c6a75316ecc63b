// Package telemetry aggregates per-window session statistics and writes them as CSV.
package telemetry

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"imagepet/internal/pet"
	"imagepet/internal/session"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowEnd  int     `csv:"window_end"`
	SimTimeSec float64 `csv:"sim_time"`
	Pets       int     `csv:"pets"`

	// Events during window
	Candidates int `csv:"candidates"`
	Counted    int `csv:"counted"`
	Bounces    int `csv:"bounces"`
	Recoveries int `csv:"stuck_recoveries"`
	Decays     int `csv:"decays"`

	// Scoreboard at window end
	TotalInteractions int `csv:"total_interactions"`
	HighScore         int `csv:"high_score"`

	// Happiness distribution (sampled at window end)
	HappinessMean float64 `csv:"happiness_mean"`
	HappinessStd  float64 `csv:"happiness_std"`
	HappinessP10  float64 `csv:"happiness_p10"`
	HappinessP50  float64 `csv:"happiness_p50"`
	HappinessP90  float64 `csv:"happiness_p90"`

	SpeedMean float64 `csv:"speed_mean"`
}

// InteractionRow is one proximity event
type InteractionRow struct {
	Tick       int     `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time"`
	PetA       string  `csv:"pet_a"`
	PetB       string  `csv:"pet_b"`
	Distance   float64 `csv:"distance"`
	Counted    bool    `csv:"counted"`
}

// Recorder accumulates tick reports into windows
type Recorder struct {
	windowTicks int
	start       time.Time
	ticks       int
	cur         WindowStats
}

// NewRecorder creates a recorder that closes a window every windowTicks ticks
func NewRecorder(windowTicks int, start time.Time) *Recorder {
	return &Recorder{windowTicks: max(1, windowTicks), start: start}
}

// Observe folds one tick into the current window. It returns the interaction
// rows for the tick, and the finished window when this tick closed one.
func (r *Recorder) Observe(rep session.TickReport, st session.Stats, pets []*pet.Pet) ([]InteractionRow, WindowStats, bool) {
	r.ticks++
	simTime := rep.Now.Sub(r.start).Seconds()

	r.cur.Bounces += rep.Bounces
	r.cur.Recoveries += rep.Recoveries
	r.cur.Decays += rep.Decays

	var rows []InteractionRow
	for _, o := range rep.Outcomes {
		r.cur.Candidates++
		if o.Counted {
			r.cur.Counted++
		}
		rows = append(rows, InteractionRow{
			Tick:       r.ticks,
			SimTimeSec: simTime,
			PetA:       string(o.A),
			PetB:       string(o.B),
			Distance:   o.Distance,
			Counted:    o.Counted,
		})
	}

	if r.ticks%r.windowTicks != 0 {
		return rows, WindowStats{}, false
	}

	w := r.cur
	w.WindowEnd = r.ticks
	w.SimTimeSec = simTime
	w.Pets = st.Pets
	w.TotalInteractions = st.TotalInteractions
	w.HighScore = st.HighScore
	fillDistribution(&w, pets)

	r.cur = WindowStats{}
	return rows, w, true
}

func fillDistribution(w *WindowStats, pets []*pet.Pet) {
	var happy, speed []float64
	for _, p := range pets {
		if !p.Sized() {
			continue
		}
		happy = append(happy, p.Happiness)
		speed = append(speed, p.Velocity.Len())
	}
	if len(happy) == 0 {
		return
	}

	w.HappinessMean, w.HappinessStd = stat.MeanStdDev(happy, nil)
	if len(happy) < 2 {
		w.HappinessStd = 0
	}
	slices.Sort(happy)
	w.HappinessP10 = stat.Quantile(0.1, stat.Empirical, happy, nil)
	w.HappinessP50 = stat.Quantile(0.5, stat.Empirical, happy, nil)
	w.HappinessP90 = stat.Quantile(0.9, stat.Empirical, happy, nil)
	w.SpeedMean = stat.Mean(speed, nil)
}
